package ledger

// Instruction is one program invocation inside a transaction. Data is the
// raw event payload, opaque until decoded.
type Instruction struct {
	ProgramId string   `json:"program_id"`
	Accounts  []string `json:"accounts"`
	Data      []byte   `json:"data"`
}

// TransactionNotification is one message from the node's transaction feed
type TransactionNotification struct {
	Signature    string        `json:"signature"`
	Slot         uint64        `json:"slot"`
	BlockTime    int64         `json:"block_time"`
	Instructions []Instruction `json:"instructions"`
}
