package model

type MolliePaymentStatus string

const (
	MollieStatusOpen       MolliePaymentStatus = "open"
	MollieStatusPending    MolliePaymentStatus = "pending"
	MollieStatusAuthorized MolliePaymentStatus = "authorized"
	MollieStatusPaid       MolliePaymentStatus = "paid"
	MollieStatusCanceled   MolliePaymentStatus = "canceled"
	MollieStatusExpired    MolliePaymentStatus = "expired"
	MollieStatusFailed     MolliePaymentStatus = "failed"
)

type MollieAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type MollieLink struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

type MollieLinks struct {
	Self     *MollieLink `json:"self,omitempty"`
	Checkout *MollieLink `json:"checkout,omitempty"`
}

type MolliePayment struct {
	ID          string              `json:"id"`
	Mode        string              `json:"mode"`
	Status      MolliePaymentStatus `json:"status"`
	Amount      MollieAmount        `json:"amount"`
	Description string              `json:"description"`
	Method      string              `json:"method"`
	RedirectURL string              `json:"redirectUrl"`
	WebhookURL  string              `json:"webhookUrl"`
	Metadata    map[string]string   `json:"metadata"`
	CreatedAt   string              `json:"createdAt"`
	PaidAt      string              `json:"paidAt,omitempty"`
	ExpiresAt   string              `json:"expiresAt,omitempty"`
	Links       MollieLinks         `json:"_links"`
}

// CheckoutURL is where the customer completes the payment.
func (p *MolliePayment) CheckoutURL() string {
	if p.Links.Checkout == nil {
		return ""
	}
	return p.Links.Checkout.Href
}
