package pkg

const (
	// ServingChangesTopic carries row-level change events for every collection
	// owned by the serving service. Subscribers treat them as reload cues.
	ServingChangesTopic = "serving.changes"
	// ServingChangesStream names the JetStream stream backing ServingChangesTopic.
	ServingChangesStream = "SERVING_CHANGES"

	// TableServingGroups identifies serving group rows in change events.
	TableServingGroups = "serving_groups"
	// TableAttendanceLogs identifies attendance log rows in change events.
	TableAttendanceLogs = "attendance_logs"
	// TableDismissedAlerts identifies dismissed alert ids in change events.
	TableDismissedAlerts = "dismissed_alerts"
)
