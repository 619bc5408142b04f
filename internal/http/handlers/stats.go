package handlers

import "net/http"

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Stats.Summary(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"animals":             summary.Animals,
		"milestones_funded":   summary.MilestonesFunded,
		"donations_pending":   summary.DonationsPending,
		"donations_approved":  summary.DonationsApproved,
		"amount_approved_sum": summary.AmountApprovedSum,
		"donations_last_24h":  summary.DonationsLast24h,
	})
}
