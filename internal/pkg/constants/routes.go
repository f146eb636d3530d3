package constants

// Static route constants
const (
	HomeRoute          = "/home"
	SendReportRoute    = "/send-report"
	ReportSuccessRoute = "/report-success"
	ReportsRoute       = "/reports"
	DemoRoute          = "/demo"
)
