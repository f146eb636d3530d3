package capture

// Reason classifies why camera acquisition failed, replacing the browser's
// stringly-typed DOMException names.
type Reason string

const (
	ReasonPermissionDenied  Reason = "permission_denied"
	ReasonDeviceUnavailable Reason = "device_unavailable"
	ReasonTimeout           Reason = "timeout"
	ReasonUnknown           Reason = "unknown"
)

// ReasonFromBrowserError maps the error names the capture page reports
// (MediaDevices.getUserMedia rejection names) onto a Reason.
func ReasonFromBrowserError(name string) Reason {
	switch name {
	case "NotAllowedError", "PermissionDeniedError", "SecurityError":
		return ReasonPermissionDenied
	case "NotFoundError", "DevicesNotFoundError", "NotReadableError", "TrackStartError", "OverconstrainedError":
		return ReasonDeviceUnavailable
	case "AbortError", "TimeoutError":
		return ReasonTimeout
	default:
		return ReasonUnknown
	}
}
