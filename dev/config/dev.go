package config

// Per-command YAML used with --dev. Entity services run on sqlite files under
// dev/data so no database server is needed locally.

const USERS_YML = `
listener:
  port: 5001
storage:
  driver: sqlite
  path: dev/data/users.db
  autoMigrate: true
`

const PATIENTS_YML = `
listener:
  port: 5002
storage:
  driver: sqlite
  path: dev/data/patients.db
  autoMigrate: true
`

const EXAMS_YML = `
listener:
  port: 5003
storage:
  driver: sqlite
  path: dev/data/exams.db
  autoMigrate: true
`

const AGGREGATOR_YML = `
listener:
  port: 5004
timeout: 5s
environments:
  - name: local
    users: http://localhost:5001
    patients: http://localhost:5002
    exams: http://localhost:5003
`

const ANALYTICS_YML = `
listener:
  port: 5005
`

const INGEST_YML = `
api: http://localhost:5001/users
out: dev/data/out.csv
timeZone: America/Toronto
`

// For returns the dev YAML of command, or an empty document.
func For(command string) string {
	switch command {
	case "users":
		return USERS_YML
	case "patients":
		return PATIENTS_YML
	case "exams":
		return EXAMS_YML
	case "aggregator":
		return AGGREGATOR_YML
	case "analytics":
		return ANALYTICS_YML
	case "ingest":
		return INGEST_YML
	default:
		return ""
	}
}
