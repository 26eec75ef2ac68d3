package discounts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sierra-outfitters/sierra-agent/internal/tools"
)

const (
	notExplicitMessage = "I don't see a specific promotional request in your message. " +
		"If you're looking for a discount code, please be more specific about which promotion you'd like."
	outsideWindowMessage = "The Early Risers promotion is not currently available. " +
		"If you have any other questions or need help with something else, just let me know!"
)

// CheckPromotionalDiscountArgs are the arguments for the
// check_promotional_discount tool.
type CheckPromotionalDiscountArgs struct {
	RequestText string `json:"request_text" jsonschema_description:"The customer's exact words requesting a promotional discount."`
}

// DiscountDecision is the payload returned to the model. Code and
// DiscountPercent appear only when eligible.
type DiscountDecision struct {
	Eligible        bool   `json:"eligible"`
	Code            string `json:"code,omitempty"`
	DiscountPercent int    `json:"discount_percent,omitempty"`
	Message         string `json:"message"`
}

// CheckPromotionalDiscountSpec binds the check_promotional_discount
// tool to the discount service.
func CheckPromotionalDiscountSpec(svc *Service) tools.Spec {
	return tools.Spec{
		Name:        "check_promotional_discount",
		Description: "Check for promotional discount eligibility based on customer request and timing constraints.",
		Parameters:  tools.GenerateSchema[CheckPromotionalDiscountArgs](),
		Run: func(_ context.Context, raw json.RawMessage) (any, error) {
			var args CheckPromotionalDiscountArgs
			if err := tools.UnmarshalArgs(raw, &args); err != nil {
				return nil, err
			}

			if !svc.ExplicitRequest(args.RequestText) {
				return DiscountDecision{Eligible: false, Message: notExplicitMessage}, nil
			}
			if !svc.InWindow(svc.now()) {
				return DiscountDecision{Eligible: false, Message: outsideWindowMessage}, nil
			}

			code := svc.NewCode()
			return DiscountDecision{
				Eligible:        true,
				Code:            code.Code,
				DiscountPercent: code.DiscountPercent,
				Message: fmt.Sprintf("Congratulations! Your Early Risers discount code is %s for %d%% off!",
					code.Code, code.DiscountPercent),
			}, nil
		},
	}
}
