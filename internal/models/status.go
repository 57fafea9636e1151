package models

// Transitions maps (current status, action) to the resulting status.
// A missing entry means the action is rejected in that status.
type Transitions[S ~string, A ~string] map[S]map[A]S

// Next returns the status reached by applying action from status.
func (t Transitions[S, A]) Next(from S, action A) (S, bool) {
	next, ok := t[from][action]
	return next, ok
}

// Allows reports whether action is accepted in status.
func (t Transitions[S, A]) Allows(from S, action A) bool {
	_, ok := t.Next(from, action)
	return ok
}

// QuoteStatus is the lifecycle status of a quote.
type QuoteStatus string

const (
	QuoteStatusInProgress QuoteStatus = "IN_PROGRESS"
	QuoteStatusValidated  QuoteStatus = "VALIDATED"
	QuoteStatusConverted  QuoteStatus = "CONVERTED"
	QuoteStatusCancelled  QuoteStatus = "CANCELLED"
)

// QuoteStatuses lists every declared quote status.
var QuoteStatuses = []QuoteStatus{QuoteStatusInProgress, QuoteStatusValidated, QuoteStatusConverted, QuoteStatusCancelled}

// Valid reports whether s is a declared quote status.
func (s QuoteStatus) Valid() bool {
	for _, v := range QuoteStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// QuoteAction is a mutating operation on a quote.
type QuoteAction string

const (
	QuoteActionUpdate   QuoteAction = "update"
	QuoteActionValidate QuoteAction = "validate"
	QuoteActionCancel   QuoteAction = "cancel"
	QuoteActionConvert  QuoteAction = "convert"
	QuoteActionDelete   QuoteAction = "delete"
)

// QuoteActions lists every mutating quote operation.
var QuoteActions = []QuoteAction{QuoteActionUpdate, QuoteActionValidate, QuoteActionCancel, QuoteActionConvert, QuoteActionDelete}

// QuoteTransitions is the quote state machine. CONVERTED is terminal; re-cancelling
// a cancelled quote is accepted and leaves it cancelled.
var QuoteTransitions = Transitions[QuoteStatus, QuoteAction]{
	QuoteStatusInProgress: {
		QuoteActionUpdate:   QuoteStatusInProgress,
		QuoteActionValidate: QuoteStatusValidated,
		QuoteActionCancel:   QuoteStatusCancelled,
		QuoteActionDelete:   QuoteStatusInProgress,
	},
	QuoteStatusValidated: {
		QuoteActionCancel:  QuoteStatusCancelled,
		QuoteActionConvert: QuoteStatusConverted,
		QuoteActionDelete:  QuoteStatusValidated,
	},
	QuoteStatusCancelled: {
		QuoteActionCancel: QuoteStatusCancelled,
		QuoteActionDelete: QuoteStatusCancelled,
	},
	QuoteStatusConverted: {},
}

// InvoiceStatus is the lifecycle status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "UNPAID"
	// InvoiceStatusPartiallyPaid is declared but no operation produces it.
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// InvoiceStatuses lists every declared invoice status.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled}

// Valid reports whether s is a declared invoice status.
func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// InvoiceAction is a guarded mutating operation on an invoice.
type InvoiceAction string

const (
	InvoiceActionMarkPaid InvoiceAction = "mark_paid"
	InvoiceActionCancel   InvoiceAction = "cancel"
	InvoiceActionDelete   InvoiceAction = "delete"
)

// InvoiceActions lists every guarded invoice operation.
var InvoiceActions = []InvoiceAction{InvoiceActionMarkPaid, InvoiceActionCancel, InvoiceActionDelete}

// InvoiceTransitions is the invoice state machine: a cancelled invoice cannot be
// paid, a paid invoice cannot be cancelled, delete is always accepted.
var InvoiceTransitions = Transitions[InvoiceStatus, InvoiceAction]{
	InvoiceStatusUnpaid: {
		InvoiceActionMarkPaid: InvoiceStatusPaid,
		InvoiceActionCancel:   InvoiceStatusCancelled,
		InvoiceActionDelete:   InvoiceStatusUnpaid,
	},
	InvoiceStatusPartiallyPaid: {
		InvoiceActionMarkPaid: InvoiceStatusPaid,
		InvoiceActionCancel:   InvoiceStatusCancelled,
		InvoiceActionDelete:   InvoiceStatusPartiallyPaid,
	},
	InvoiceStatusPaid: {
		InvoiceActionMarkPaid: InvoiceStatusPaid,
		InvoiceActionDelete:   InvoiceStatusPaid,
	},
	InvoiceStatusCancelled: {
		InvoiceActionCancel: InvoiceStatusCancelled,
		InvoiceActionDelete: InvoiceStatusCancelled,
	},
}

// PaymentMethod is how an invoice was settled.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "ESPECES"
	PaymentCheque      PaymentMethod = "CHEQUE"
	PaymentTransfer    PaymentMethod = "VIREMENT"
	PaymentCard        PaymentMethod = "CB"
	PaymentDirectDebit PaymentMethod = "PRELEVEMENT"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCheque, PaymentTransfer, PaymentCard, PaymentDirectDebit:
		return true
	}
	return false
}
