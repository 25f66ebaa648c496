package operation

// OperationRequest is one item of a submit batch. Timestamp 0 defaults to
// the transaction time. Account is the external account tied to the
// operation (the payer for repayments); it is interned on submission.
type OperationRequest struct {
	SubLoanID uint64 `json:"sub_loan_id"`
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
	Value     uint64 `json:"value"`
	Account   string `json:"account"`
}

type SubmitBatchInput struct {
	Requests []OperationRequest `json:"requests"`
}

type OperationDTO struct {
	SubLoanID uint64 `json:"sub_loan_id"`
	Seq       uint64 `json:"seq"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Value     uint64 `json:"value"`
	Account   string `json:"account,omitempty"`
	// PrevSeq/NextSeq are the (timestamp, seq)-order neighbours among all
	// operations ever submitted for the sub-loan; 0 at the ends.
	PrevSeq uint64 `json:"prev_seq"`
	NextSeq uint64 `json:"next_seq"`
}

type SubmitBatchResult struct {
	BatchID    string          `json:"batch_id"`
	Operations []*OperationDTO `json:"operations"`
}

// VoidRequest targets one operation. Counterparty receives the refund when
// an applied repayment is voided.
type VoidRequest struct {
	SubLoanID    uint64 `json:"sub_loan_id"`
	Seq          uint64 `json:"seq"`
	Counterparty string `json:"counterparty"`
}

type VoidBatchInput struct {
	Requests []VoidRequest `json:"requests"`
}

type VoidBatchResult struct {
	BatchID    string          `json:"batch_id"`
	Operations []*OperationDTO `json:"operations"`
}
