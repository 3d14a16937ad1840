package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyJobID          = "job_id"
	KeyJobStatus      = "job_status"
	KeyOwner          = "owner"
	KeyRepo           = "repo"
	KeyHeadSHA        = "head_sha"
	KeyInstallationID = "installation_id"
	KeyMediaType      = "media_type"
	KeyPayloadBytes   = "payload_bytes"
	KeyExitCode       = "exit_code"
	KeyDurationMS     = "duration_ms"
	KeyMethod         = "method"
	KeyPath           = "path"
	KeyStatus         = "status"
	KeyUserAgent      = "user_agent"
	KeyRemoteAddr     = "remote_addr"
	KeyError          = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func JobID(id string) slog.Attr          { return slog.String(KeyJobID, id) }
func JobStatus(s string) slog.Attr       { return slog.String(KeyJobStatus, s) }
func Owner(o string) slog.Attr           { return slog.String(KeyOwner, o) }
func Repo(r string) slog.Attr            { return slog.String(KeyRepo, r) }
func HeadSHA(sha string) slog.Attr       { return slog.String(KeyHeadSHA, sha) }
func InstallationID(id string) slog.Attr { return slog.String(KeyInstallationID, id) }
func MediaType(mt string) slog.Attr      { return slog.String(KeyMediaType, mt) }
func PayloadBytes(n int) slog.Attr       { return slog.Int(KeyPayloadBytes, n) }
func ExitCode(c int) slog.Attr           { return slog.Int(KeyExitCode, c) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr          { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr      { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr   { return slog.String(KeyRemoteAddr, addr) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
