package domain

// Apply adds donation to the matching aggregate and to Raised.
func (p *Progress) Apply(d Donation) {
	switch d.Type {
	case DonationPersonal:
		p.PersonalContribution += d.Amount
	case DonationFundraised:
		p.Fundraised += d.Amount
	}
	p.Raised = p.PersonalContribution + p.Fundraised
}

// Totals sums a donation log by type.
type Totals struct {
	Personal   int64 `json:"personal"`
	Fundraised int64 `json:"fundraised"`
	Raised     int64 `json:"raised"`
}

func SumDonations(log []Donation) Totals {
	var t Totals
	for _, d := range log {
		switch d.Type {
		case DonationPersonal:
			t.Personal += d.Amount
		case DonationFundraised:
			t.Fundraised += d.Amount
		}
	}
	t.Raised = t.Personal + t.Fundraised
	return t
}

type Reconciliation struct {
	VolunteerID string `json:"volunteer_id"`
	Stored      Totals `json:"stored"`
	Computed    Totals `json:"computed"`
	Balanced    bool   `json:"balanced"`
}

// Reconcile compares the stored aggregates with the donation log.
func Reconcile(p Progress, log []Donation) Reconciliation {
	stored := Totals{Personal: p.PersonalContribution, Fundraised: p.Fundraised, Raised: p.Raised}
	computed := SumDonations(log)
	return Reconciliation{
		VolunteerID: p.VolunteerID.String(),
		Stored:      stored,
		Computed:    computed,
		Balanced:    stored == computed && stored.Raised == stored.Personal+stored.Fundraised,
	}
}

// AfterOutreach is the status a prospect holds once an outreach is logged:
// identified moves to contacted, every other status is kept.
func AfterOutreach(current ProspectStatus) ProspectStatus {
	if current == ProspectIdentified {
		return ProspectContacted
	}
	return current
}

// Remaining is how much of the goal is still open, never negative.
func (p Progress) Remaining() int64 {
	if p.Goal <= p.Raised {
		return 0
	}
	return p.Goal - p.Raised
}
