package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

// DecisionNotifier posts approve/reject decisions to a Lark group chat
type DecisionNotifier struct {
	sender MessageSender
	chatID string
	logger *zap.Logger
}

// NewDecisionNotifier creates a notifier posting to chatID
func NewDecisionNotifier(sender MessageSender, chatID string, logger *zap.Logger) *DecisionNotifier {
	return &DecisionNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

// NotifyDecision sends an interactive card describing the decided trip
func (n *DecisionNotifier) NotifyDecision(ctx context.Context, trip *entity.TripView) error {
	card, err := json.Marshal(BuildDecisionCard(trip))
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}

	if _, err := n.sender.SendMessage(ctx, "chat_id", n.chatID, "interactive", string(card)); err != nil {
		return err
	}

	n.logger.Info("Decision posted to Lark",
		zap.Int64("trip_id", trip.ID),
		zap.String("status", string(trip.Status)))
	return nil
}

// BuildDecisionCard renders the Lark card for a decided trip
func BuildDecisionCard(trip *entity.TripView) map[string]interface{} {
	title, template := "Perdin disetujui", "green"
	if trip.Status == workflow.StateRejected {
		title, template = "Perdin ditolak", "red"
	}

	lines := []string{
		fmt.Sprintf("**Pegawai:** %s", trip.RequesterName),
		fmt.Sprintf("**Maksud tujuan:** %s", trip.Purpose),
		fmt.Sprintf("**Rute:** %s → %s", trip.OriginCityName, trip.DestinationCityName),
		fmt.Sprintf("**Tanggal:** %s s/d %s (%d hari)",
			trip.DepartureDate.Format(entity.DateLayout),
			trip.ReturnDate.Format(entity.DateLayout),
			trip.DurationDays),
		fmt.Sprintf("**Total uang:** Rp %s", FormatRupiah(trip.ReimbursementAmount)),
	}

	return map[string]interface{}{
		"config": map[string]interface{}{"wide_screen_mode": true},
		"header": map[string]interface{}{
			"template": template,
			"title":    map[string]interface{}{"tag": "plain_text", "content": fmt.Sprintf("%s #%d", title, trip.ID)},
		},
		"elements": []interface{}{
			map[string]interface{}{
				"tag":  "div",
				"text": map[string]interface{}{"tag": "lark_md", "content": strings.Join(lines, "\n")},
			},
		},
	}
}

// FormatRupiah groups thousands with dots, e.g. 1250000 -> "1.250.000"
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// NoopNotifier is used when Lark is disabled
type NoopNotifier struct{}

func (NoopNotifier) NotifyDecision(ctx context.Context, trip *entity.TripView) error { return nil }

// Verify interface compliance
var (
	_ port.DecisionNotifier = (*DecisionNotifier)(nil)
	_ port.DecisionNotifier = NoopNotifier{}
)
