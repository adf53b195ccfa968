package model

// All returns every model managed by auto-migration.
func All() []interface{} {
	return []interface{}{
		&DashboardModel{},
		&DashboardMemberModel{},
		&RecurrenceModel{},
		&TransactionModel{},
	}
}
