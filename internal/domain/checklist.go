package domain

// ChecklistStatus is the progress state of a single checklist item.
type ChecklistStatus string

const (
	ChecklistNotStarted ChecklistStatus = "not_started"
	ChecklistInProgress ChecklistStatus = "in_progress"
	ChecklistComplete   ChecklistStatus = "complete"
)

func (s ChecklistStatus) String() string { return string(s) }

func (s ChecklistStatus) IsValid() bool {
	switch s {
	case ChecklistNotStarted, ChecklistInProgress, ChecklistComplete:
		return true
	}
	return false
}

// IsChecklistStatus reports whether v is one of the three valid status strings.
func IsChecklistStatus(v string) bool {
	return ChecklistStatus(v).IsValid()
}

// Checklist item keys, in display order.
const (
	ChecklistKeyDocumentsComplete   = "documentsComplete"
	ChecklistKeyExpensesCategorized = "expensesCategorized"
	ChecklistKeyReadyForTaxHawk     = "readyForTaxHawk"
	ChecklistKeyIncomeReviewed      = "incomeReviewed"
	ChecklistKeyBankInfoCollected   = "bankInfoCollected"
	ChecklistKeyOtherCompleted      = "otherCompleted"
	ChecklistKeyFiled               = "filed"
	ChecklistKeyAccepted            = "accepted"
)

// ChecklistKeys lists the eight canonical checklist keys in display order.
var ChecklistKeys = []string{
	ChecklistKeyDocumentsComplete,
	ChecklistKeyExpensesCategorized,
	ChecklistKeyReadyForTaxHawk,
	ChecklistKeyIncomeReviewed,
	ChecklistKeyBankInfoCollected,
	ChecklistKeyOtherCompleted,
	ChecklistKeyFiled,
	ChecklistKeyAccepted,
}

// TaxReturnChecklist tracks preparation progress for one client's return.
// The zero value is NOT valid; use DefaultChecklist or NormalizeChecklist.
type TaxReturnChecklist struct {
	DocumentsComplete   ChecklistStatus `json:"documentsComplete"`
	ExpensesCategorized ChecklistStatus `json:"expensesCategorized"`
	ReadyForTaxHawk     ChecklistStatus `json:"readyForTaxHawk"`
	IncomeReviewed      ChecklistStatus `json:"incomeReviewed"`
	BankInfoCollected   ChecklistStatus `json:"bankInfoCollected"`
	OtherCompleted      ChecklistStatus `json:"otherCompleted"`
	Filed               ChecklistStatus `json:"filed"`
	Accepted            ChecklistStatus `json:"accepted"`
}

// DefaultChecklist returns a checklist with every item not started.
func DefaultChecklist() TaxReturnChecklist {
	return TaxReturnChecklist{
		DocumentsComplete:   ChecklistNotStarted,
		ExpensesCategorized: ChecklistNotStarted,
		ReadyForTaxHawk:     ChecklistNotStarted,
		IncomeReviewed:      ChecklistNotStarted,
		BankInfoCollected:   ChecklistNotStarted,
		OtherCompleted:      ChecklistNotStarted,
		Filed:               ChecklistNotStarted,
		Accepted:            ChecklistNotStarted,
	}
}

// fields maps canonical keys to the struct fields holding their status.
func (c *TaxReturnChecklist) fields() map[string]*ChecklistStatus {
	return map[string]*ChecklistStatus{
		ChecklistKeyDocumentsComplete:   &c.DocumentsComplete,
		ChecklistKeyExpensesCategorized: &c.ExpensesCategorized,
		ChecklistKeyReadyForTaxHawk:     &c.ReadyForTaxHawk,
		ChecklistKeyIncomeReviewed:      &c.IncomeReviewed,
		ChecklistKeyBankInfoCollected:   &c.BankInfoCollected,
		ChecklistKeyOtherCompleted:      &c.OtherCompleted,
		ChecklistKeyFiled:               &c.Filed,
		ChecklistKeyAccepted:            &c.Accepted,
	}
}

// Get returns the status for a canonical key. The second return value is
// false for unknown keys.
func (c TaxReturnChecklist) Get(key string) (ChecklistStatus, bool) {
	p, ok := c.fields()[key]
	if !ok {
		return "", false
	}
	return *p, true
}

// Set assigns a status to a canonical key. Returns false for unknown keys;
// the caller is responsible for validating the status beforehand.
func (c *TaxReturnChecklist) Set(key string, status ChecklistStatus) bool {
	p, ok := c.fields()[key]
	if !ok {
		return false
	}
	*p = status
	return true
}

// NormalizeChecklist converts arbitrary persisted data into the canonical
// eight-key shape. Known keys with a valid status string are kept; anything
// else (missing keys, unknown keys, malformed values) defaults to not_started.
// Never fails, regardless of input.
func NormalizeChecklist(raw map[string]any) TaxReturnChecklist {
	c := DefaultChecklist()
	if raw == nil {
		return c
	}
	for key, p := range c.fields() {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case ChecklistStatus:
			s = string(t)
		default:
			continue
		}
		if IsChecklistStatus(s) {
			*p = ChecklistStatus(s)
		}
	}
	return c
}

// LifecycleBadge is the single rolled-up state shown on a client workspace.
type LifecycleBadge string

const (
	BadgeWaitingOnDocuments LifecycleBadge = "Waiting on Documents"
	BadgeReviewing          LifecycleBadge = "Reviewing"
	BadgeReadyToFile        LifecycleBadge = "Ready to File"
	BadgeFiled              LifecycleBadge = "Filed"
	BadgeAccepted           LifecycleBadge = "Accepted"
)

func (b LifecycleBadge) String() string { return string(b) }

// LifecycleBadge derives the workspace badge from the checklist.
// The priority order encodes business priority, not checklist display order:
// accepted beats filed beats ready-to-file beats reviewing beats waiting.
// The badge is recomputed on every read and never stored.
func (c TaxReturnChecklist) LifecycleBadge() LifecycleBadge {
	switch {
	case c.Accepted == ChecklistComplete:
		return BadgeAccepted
	case c.Filed == ChecklistComplete:
		return BadgeFiled
	case c.ReadyForTaxHawk == ChecklistComplete:
		return BadgeReadyToFile
	}
	for _, s := range []ChecklistStatus{
		c.DocumentsComplete,
		c.ExpensesCategorized,
		c.IncomeReviewed,
		c.BankInfoCollected,
		c.OtherCompleted,
	} {
		if s == ChecklistInProgress {
			return BadgeReviewing
		}
	}
	return BadgeWaitingOnDocuments
}
