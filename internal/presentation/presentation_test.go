package presentation

import (
	"testing"
	"time"

	"triagedesk/dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMappingsAreTotal(t *testing.T) {
	for _, s := range domain.AllStatuses() {
		_, ok := statusColors[s]
		assert.True(t, ok, "status %s has no colour", s)
	}
	for _, p := range domain.AllPriorities() {
		_, ok := priorityColors[p]
		assert.True(t, ok, "priority %s has no colour", p)
	}
	for _, sev := range []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh} {
		_, ok := severityColors[sev]
		assert.True(t, ok, "severity %s has no colour", sev)
	}
	for _, c := range []Color{Gray, Blue, Indigo, Yellow, Orange, Green, Red} {
		_, ok := terminalColors[c]
		assert.True(t, ok, "colour %s has no terminal value", c)
	}
}

func TestFallbacks(t *testing.T) {
	assert.Equal(t, Gray, StatusColor("BOGUS"))
	assert.Equal(t, Gray, PriorityColor(""))
	assert.Equal(t, Gray, SeverityColor("critical"))
	assert.Equal(t, Gray, TeamStatusColor(domain.TeamArchived))
	assert.Equal(t, terminalColors[Gray], Color("pink").Terminal())
}

func TestColours(t *testing.T) {
	assert.Equal(t, Red, StatusColor(domain.StatusEscalated))
	assert.Equal(t, Green, StatusColor(domain.StatusResponded))
	assert.Equal(t, Red, PriorityColor(domain.PriorityUrgent))
	assert.Equal(t, Orange, PriorityColor(domain.PriorityHigh))
	assert.Equal(t, Red, SeverityColor(domain.SeverityHigh))
	assert.Equal(t, Yellow, SeverityColor(domain.SeverityMedium))
	assert.Equal(t, Green, SeverityColor(domain.SeverityLow))
	assert.Equal(t, Green, TeamStatusColor(domain.TeamActive))

	assert.Equal(t, "bg-red-100 text-red-800", Red.BadgeClass())
	assert.Equal(t, "text-yellow-600 bg-yellow-50 border-yellow-200", Yellow.FeedbackClass())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "IN PROGRESS", Label(domain.StatusInProgress))
	assert.Equal(t, "REFUND REQUEST", Label(domain.IntentRefundRequest))
	assert.Equal(t, "URGENT", Label(domain.PriorityUrgent))
}

func TestConfidenceLabel(t *testing.T) {
	assert.Equal(t, "87% confidence", ConfidenceLabel(0.873))
	assert.Equal(t, "88% confidence", ConfidenceLabel(0.875))
	assert.Equal(t, "0% confidence", ConfidenceLabel(0))
	assert.Equal(t, "100% confidence", ConfidenceLabel(1))
}

func TestResponseTime(t *testing.T) {
	assert.Equal(t, "2.35h", ResponseTime(2.3456))
	assert.Equal(t, "4h", ResponseTime(4))
	assert.Equal(t, "0h", ResponseTime(0))
}

func TestDistribution(t *testing.T) {
	assert.Equal(t, "N/A", Distribution(nil))
	assert.Equal(t, "BUG_REPORT: 3, REFUND_REQUEST: 5", Distribution(map[string]int64{
		"REFUND_REQUEST": 5,
		"BUG_REPORT":     3,
	}))
}

func TestDates(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "Mar 1, 02:05 PM", ListDate(ts))
	assert.Equal(t, "March 1, 2024 at 02:05 PM", DetailDate(ts))
	assert.Equal(t, "3/1/2024", Day(ts))
	assert.Empty(t, ListDate(time.Time{}))
}
