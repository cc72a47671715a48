package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wirelextechs/datagod/model"
	"github.com/Wirelextechs/datagod/paystack"
)

// Ledger is the slice of the record-store client the engine needs.
type Ledger interface {
	CreateOrder(ctx context.Context, o model.Order) error
	FindOrderByShortID(ctx context.Context, shortID string) (*model.Order, error)
	FindOrderByReference(ctx context.Context, reference string) (*model.Order, error)
	CountOrders(ctx context.Context) (int64, error)
	MarkPaid(ctx context.Context, reference string) (bool, error)
	GetPackage(ctx context.Context, id int64) (*model.Package, error)
}

// Gateway is the slice of the payment-gateway client the engine needs.
type Gateway interface {
	InitializeTransaction(ctx context.Context, in paystack.InitializeRequest) (*paystack.InitializeResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerificationResult, error)
}

// Events receives notifications of completed payments. Implementations must
// be best-effort: a failed publish never fails the payment path.
type Events interface {
	OrderPaid(order model.Order, paidMinor int64)
}

// Engine drives the payment lifecycle: it creates PENDING orders with a
// server-computed charge, and moves them to PAID only after an
// authenticated confirmation whose amount matches the quote.
type Engine struct {
	ledger         Ledger
	gateway        Gateway
	events         Events
	feeRate        float64
	toleranceMinor int64
	callbackURL    string
	webhookSecret  string
}

func NewEngine(ledger Ledger, gateway Gateway, events Events, feeRate float64, toleranceMinor int64, callbackURL, webhookSecret string) *Engine {
	return &Engine{
		ledger:         ledger,
		gateway:        gateway,
		events:         events,
		feeRate:        feeRate,
		toleranceMinor: toleranceMinor,
		callbackURL:    callbackURL,
		webhookSecret:  webhookSecret,
	}
}

type InitializeInput struct {
	Email     string
	Phone     string
	PackageID int64
}

type InitializeOutput struct {
	AuthorizationURL string
	ShortID          string
	Reference        string
	AmountMinor      int64
}

// Initialize creates a PENDING order for the requested package and opens a
// gateway transaction for the server-computed amount. If the gateway call
// fails after the order row exists, the order is left PENDING for later
// manual reconciliation and the failure is returned.
func (e *Engine) Initialize(ctx context.Context, in InitializeInput) (*InitializeOutput, error) {
	if !strings.Contains(in.Email, "@") {
		return nil, &ValidationError{Msg: "a valid email is required"}
	}
	if len(in.Phone) < 10 {
		return nil, &ValidationError{Msg: "a valid 10-digit phone number is required"}
	}
	if in.PackageID <= 0 {
		return nil, &ValidationError{Msg: "package_id is required"}
	}

	pkg, err := e.ledger.GetPackage(ctx, in.PackageID)
	if err != nil {
		return nil, &UpstreamError{Service: "ledger", Err: err}
	}
	if pkg == nil || !pkg.IsEnabled {
		return nil, &NotFoundError{Resource: "package", Key: strconv.FormatInt(in.PackageID, 10)}
	}
	if pkg.PriceGHS <= 0 {
		return nil, &UpstreamError{Service: "ledger", Err: fmt.Errorf("package %d has non-positive price", pkg.ID)}
	}

	amount := ExpectedTotalMinor(pkg.PriceGHS, e.feeRate)
	shortID := e.allocateShortID(ctx)
	reference := uuid.NewString()

	now := time.Now().UTC()
	order := model.Order{
		ShortID:          shortID,
		GatewayReference: reference,
		CustomerEmail:    in.Email,
		CustomerPhone:    in.Phone,
		PackageGB:        pkg.DataValueGB,
		PackagePriceGHS:  pkg.PriceGHS,
		PackageDetails:   pkg.PackageName,
		ExpectedTotal:    amount,
		Status:           model.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.ledger.CreateOrder(ctx, order); err != nil {
		return nil, &UpstreamError{Service: "ledger", Err: err}
	}

	res, err := e.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       in.Email,
		AmountMinor: amount,
		Reference:   reference,
		CallbackURL: e.callbackURL,
		Metadata: map[string]any{
			"short_id":   shortID,
			"phone":      in.Phone,
			"package_id": in.PackageID,
		},
	})
	if err != nil {
		// The PENDING order stays behind for manual reconciliation.
		log.Printf("gateway init failed, order %s left pending: %v", shortID, err)
		return nil, &UpstreamError{Service: "paystack", Err: err}
	}

	return &InitializeOutput{
		AuthorizationURL: res.AuthorizationURL,
		ShortID:          shortID,
		Reference:        reference,
		AmountMinor:      amount,
	}, nil
}

// VerifyByClient re-checks an order against the gateway, typically after the
// customer returns from the hosted checkout. Safe to call repeatedly: an
// order that is already PAID (or further along) is a successful no-op.
func (e *Engine) VerifyByClient(ctx context.Context, shortID string) error {
	if shortID == "" {
		return &ValidationError{Msg: "reference is required"}
	}

	order, err := e.ledger.FindOrderByShortID(ctx, shortID)
	if err != nil {
		return &UpstreamError{Service: "ledger", Err: err}
	}
	if order == nil {
		return &NotFoundError{Resource: "order", Key: shortID}
	}
	if order.Status != model.StatusPending {
		return nil
	}

	vr, err := e.gateway.VerifyTransaction(ctx, order.GatewayReference)
	if err != nil {
		return &UpstreamError{Service: "paystack", Err: err}
	}
	if !vr.Success {
		return &ValidationError{Msg: "payment not completed"}
	}

	return e.confirm(ctx, order, vr.PaidAmountMinor)
}

type WebhookResult struct {
	Ignored bool
	ShortID string
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// HandleWebhook processes an asynchronous gateway notification. The
// signature is checked over the raw bytes before anything is parsed. Events
// other than charge.success are acknowledged and ignored so the gateway
// stops redelivering them. Webhooks never create orders.
func (e *Engine) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error) {
	if e.webhookSecret == "" {
		return nil, &ConfigError{Missing: "PAYSTACK_SECRET_KEY"}
	}
	if !paystack.ValidSignature(e.webhookSecret, rawBody, signature) {
		log.Printf("SECURITY: webhook signature check failed")
		return nil, &AuthenticationError{Reason: "invalid webhook signature"}
	}

	var ev webhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, &ValidationError{Msg: "malformed webhook payload"}
	}
	if ev.Event != "charge.success" {
		return &WebhookResult{Ignored: true}, nil
	}

	order, err := e.ledger.FindOrderByReference(ctx, ev.Data.Reference)
	if err != nil {
		return nil, &UpstreamError{Service: "ledger", Err: err}
	}
	if order == nil {
		return nil, &NotFoundError{Resource: "order", Key: ev.Data.Reference}
	}
	if order.Status != model.StatusPending {
		// Redelivered webhook for an already-reconciled order.
		return &WebhookResult{ShortID: order.ShortID}, nil
	}

	if err := e.confirm(ctx, order, ev.Data.Amount); err != nil {
		return nil, err
	}
	return &WebhookResult{ShortID: order.ShortID}, nil
}

// confirm applies the amount check and the conditional PENDING -> PAID
// transition. Losing the race against a concurrent confirmation is success.
func (e *Engine) confirm(ctx context.Context, order *model.Order, paidMinor int64) error {
	diff := paidMinor - order.ExpectedTotal
	if diff < 0 {
		diff = -diff
	}
	if diff > e.toleranceMinor {
		log.Printf("SECURITY: amount mismatch on order %s: expected %d, gateway reports %d",
			order.ShortID, order.ExpectedTotal, paidMinor)
		return &AmountMismatchError{
			ShortID:       order.ShortID,
			ExpectedMinor: order.ExpectedTotal,
			PaidMinor:     paidMinor,
		}
	}

	updated, err := e.ledger.MarkPaid(ctx, order.GatewayReference)
	if err != nil {
		return &UpstreamError{Service: "ledger", Err: err}
	}
	if updated {
		log.Printf("order %s marked paid (%d minor units)", order.ShortID, paidMinor)
		if e.events != nil {
			e.events.OrderPaid(*order, paidMinor)
		}
	}
	return nil
}

// allocateShortID derives the next id from the live order count. Two
// near-simultaneous initializations can read the same count; the ledger's
// unique constraint turns that into a create conflict the caller can retry.
// A failed count lookup falls back to a randomized id instead of failing
// order creation.
func (e *Engine) allocateShortID(ctx context.Context) string {
	count, err := e.ledger.CountOrders(ctx)
	if err != nil {
		id := FallbackShortID()
		log.Printf("order count unavailable, using fallback id %s: %v", id, err)
		return id
	}
	return ShortIDForCount(count)
}
