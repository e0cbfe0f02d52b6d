package payments

import "context"

// Intent is the gateway-neutral view of a payment intent held by the external
// processor. Metadata carries the ownership stamp set at creation time.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Description  string
	Status       string
	Created      int64
	Metadata     map[string]string
}

// Page is one upstream page of intents plus the processor's has-more flag.
type Page struct {
	Intents []Intent
	HasMore bool
}

// CreateParams carries everything the processor needs to create an intent.
type CreateParams struct {
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// Gateway abstracts the external payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, params CreateParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ListIntents(ctx context.Context, limit int64, startingAfter string) (*Page, error)
}
