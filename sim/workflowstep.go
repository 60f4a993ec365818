package sim

// DataSourceKind classifies the kind of data store a WorkflowStep reads
// from. Informational only — not yet used to affect timing.
type DataSourceKind int

const (
	Relational DataSourceKind = iota
	Object
	File
	DBMS
	Big
	NoDataSource
	OtherDataSource
)

func (d DataSourceKind) String() string {
	switch d {
	case Relational:
		return "RELATIONAL"
	case Object:
		return "OBJECT"
	case File:
		return "FILE"
	case DBMS:
		return "DBMS"
	case Big:
		return "BIG"
	case NoDataSource:
		return "NONE"
	default:
		return "OTHER"
	}
}

// WorkflowStep is a single stage of a WorkflowChain: one hop to a
// service type, with the sizes and timings the planner needs to build
// SolutionSteps for it. ComputeTimeMs is expressed relative to
// baselinePerCore and is adjusted per-node by ComputeNode.AdjustedServiceTime.
type WorkflowStep struct {
	Name            string
	Description     string
	ServiceType     string
	ComputeTimeMs   int
	Chatter         int
	RequestSizeKB   int
	ResponseSizeKB  int
	DataSource      DataSourceKind
	CachePercent    int
}
