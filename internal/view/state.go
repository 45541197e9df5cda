package view

// Phase is where the view is in its uninitialized → ready lifecycle.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// Status lines shown to the user.
const (
	StatusLoading        = "Loading ledger connection, accounts, and contract..."
	StatusInitFailed     = "Failed to load ledger connection, accounts, or contract. Check logs for details."
	StatusNotConfigured  = "Ledger client is not configured."
	StatusRegistering    = "Registering object..."
	StatusRegistered     = "Object registered successfully with ID: %d"
	StatusRegisterFailed = "Error registering object. Check logs for details."
	StatusRetrieving     = "Retrieving object..."
	StatusRetrieved      = "Object retrieved successfully"
	StatusRetrieveFailed = "Error: Invalid object ID or object not found"
)

// State is everything the page shows. Version increases with every change so
// observers can drop out-of-order copies.
type State struct {
	Version uint64 `json:"version"`
	Phase   Phase  `json:"phase"`

	// form inputs
	Payload  string `json:"payload"`
	ObjectID uint64 `json:"object_id,omitempty"`

	Count     uint64 `json:"count"`
	LastID    uint64 `json:"last_id,omitempty"`
	Status    string `json:"status"`
	Retrieved string `json:"retrieved,omitempty"`

	Signer    string `json:"signer,omitempty"`
	NetworkID string `json:"network_id,omitempty"`
	Contract  string `json:"contract,omitempty"`
}

func (s State) Ready() bool { return s.Phase == PhaseReady }
