package config

type WorkerKeyStruct struct {
	PersistViolationsQueue string
	PersistAuditQueue      string
	RecomputeRanksQueue    string
}

var WorkerKey = &WorkerKeyStruct{
	PersistViolationsQueue: "persist_violations_queue",
	PersistAuditQueue:      "persist_audit_queue",
	RecomputeRanksQueue:    "recompute_ranks_queue",
}
