package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"bloomkart/internal/model"
)

// Provider metadata limits: string values are truncated so an oversized
// note or address never fails the whole session.
const (
	maxMetadataValueLen = 500
	maxSummaryNameLen   = 60
)

// BrokerConfig holds the session-creation policy.
type BrokerConfig struct {
	// MethodSets is the ordered list of payment-method sets to attempt.
	// Each rejected attempt falls through to the next set; the last set's
	// failure is fatal.
	MethodSets [][]string

	Currency   string
	SuccessURL string
	CancelURL  string
	Locale     string
}

// DefaultMethodSets is the standard negotiation ladder: prefer the
// regional method, degrade to card-only when the provider rejects it.
func DefaultMethodSets() [][]string {
	return [][]string{
		{"klarna", "card"},
		{"card"},
	}
}

// CheckoutMetadata is the order context forwarded to the provider so the
// webhook can build the order record.
type CheckoutMetadata struct {
	DeliveryType model.DeliveryType
	Address      string
	Note         string
	Items        []model.CartLine
	Gifts        []model.CartLine
}

// Broker opens hosted checkout sessions, negotiating the accepted
// payment-method set with the provider. It holds no local state and
// performs no writes; the order record is created out-of-band by the
// provider's webhook.
type Broker struct {
	provider SessionCreator
	config   BrokerConfig
	logger   zerolog.Logger
}

// NewBroker creates a new checkout session broker.
func NewBroker(provider SessionCreator, config BrokerConfig, logger zerolog.Logger) (*Broker, error) {
	if len(config.MethodSets) == 0 {
		config.MethodSets = DefaultMethodSets()
	}
	for i, set := range config.MethodSets {
		if len(set) == 0 {
			return nil, fmt.Errorf("method set %d is empty: %w", i, model.ErrInvalidConfig)
		}
	}
	if config.SuccessURL == "" || config.CancelURL == "" {
		return nil, fmt.Errorf("success and cancel URLs are required: %w", model.ErrInvalidConfig)
	}

	return &Broker{
		provider: provider,
		config:   config,
		logger:   logger.With().Str("component", "session-broker").Logger(),
	}, nil
}

// CreateSession opens a new checkout session for a priced order. Method
// sets are tried strictly in sequence: the first rejection is recorded as
// the fallback reason, a rejection of the final set is fatal. The returned
// session is immutable; a retry must create a new one.
func (b *Broker) CreateSession(ctx context.Context, order *model.PricedOrder, contact model.BuyerContact, meta CheckoutMetadata) (*model.CheckoutSession, error) {
	if order == nil {
		return nil, model.ErrInvalidConfig
	}

	req := &SessionRequest{
		AmountMinor: order.TotalMinorUnits(),
		Currency:    b.config.Currency,
		SuccessURL:  b.config.SuccessURL,
		CancelURL:   b.config.CancelURL,
		Locale:      b.config.Locale,
		LineItem: LineItem{
			Name:        "Flower order",
			AmountMinor: order.TotalMinorUnits(),
			Quantity:    1,
		},
		Customer: Customer{
			Name:  contact.Name,
			Phone: contact.Phone,
		},
		Metadata: buildMetadata(order, contact, meta),
	}

	// Some payment methods misbehave on synthetic addresses, so only
	// verified-looking emails are forwarded.
	if looksVerifiedEmail(contact.Email) {
		req.Customer.Email = contact.Email
	}

	var fallbackReason string
	for i, methods := range b.config.MethodSets {
		req.PaymentMethods = methods

		session, err := b.provider.CreateSession(ctx, req)
		if err == nil {
			result := &model.CheckoutSession{
				SessionID:              session.ID,
				CheckoutURL:            session.URL,
				AcceptedPaymentMethods: append([]string(nil), methods...),
				FallbackReason:         fallbackReason,
			}
			if fallbackReason != "" {
				b.logger.Info().
					Str("session_id", session.ID).
					Strs("accepted_methods", methods).
					Str("fallback_reason", fallbackReason).
					Msg("session created with degraded payment methods")
			}
			return result, nil
		}

		reason := rejectionReason(err)
		lastAttempt := i == len(b.config.MethodSets)-1

		b.logger.Warn().
			Err(err).
			Strs("payment_methods", methods).
			Bool("last_attempt", lastAttempt).
			Msg("session attempt rejected")

		if lastAttempt {
			if IsTimeout(err) {
				return nil, fmt.Errorf("%w: %s", model.ErrSessionTimeout, reason)
			}
			return nil, fmt.Errorf("%w: %s", model.ErrProviderRejected, reason)
		}

		if fallbackReason == "" {
			fallbackReason = reason
		}
	}

	return nil, model.ErrInvalidConfig
}

// buildMetadata assembles the provider metadata bag within its limits.
func buildMetadata(order *model.PricedOrder, contact model.BuyerContact, meta CheckoutMetadata) map[string]string {
	bag := map[string]string{
		"buyer_id":      contact.BuyerID,
		"customer_name": contact.Name,
		"phone":         contact.Phone,
		"florist_id":    order.FloristID,
		"delivery_type": string(meta.DeliveryType),
		"address":       meta.Address,
		"note":          meta.Note,
		"items":         summarizeLines(meta.Items),
	}
	if order.PromoCodeApplied != "" {
		bag["promo_code"] = order.PromoCodeApplied
	}
	if len(meta.Gifts) > 0 {
		bag["gifts"] = summarizeLines(meta.Gifts)
	}

	for key, value := range bag {
		if value == "" {
			delete(bag, key)
			continue
		}
		bag[key] = truncate(value, maxMetadataValueLen)
	}

	return bag
}

// lineSummary is the compact per-line shape serialized into metadata.
type lineSummary struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func summarizeLines(lines []model.CartLine) string {
	if len(lines) == 0 {
		return ""
	}

	summaries := make([]lineSummary, len(lines))
	for i, line := range lines {
		summaries[i] = lineSummary{
			Name: truncate(line.Name, maxSummaryNameLen),
			Qty:  line.Qty,
		}
	}

	encoded, err := json.Marshal(summaries)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// truncate cuts s to at most max bytes without splitting a rune, so
// truncated names and addresses stay valid UTF-8 on the wire.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// placeholderDomains are synthetic email domains that must never reach the
// provider.
var placeholderDomains = map[string]struct{}{
	"example.com":       {},
	"example.org":       {},
	"test.com":          {},
	"invalid":           {},
	"localhost":         {},
	"placeholder.email": {},
}

// looksVerifiedEmail is a cheap domain-based heuristic; it is not full
// address validation.
func looksVerifiedEmail(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	if _, placeholder := placeholderDomains[domain]; placeholder {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	return true
}

// errors.Is-friendly reason extraction for logging and fallbackReason.
func rejectionReason(err error) string {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return fmt.Sprintf("provider rejected with status %d", providerErr.Status)
	}
	if IsTimeout(err) {
		return "provider call timed out"
	}
	return err.Error()
}
