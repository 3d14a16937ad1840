// Package request validates build-trigger query parameters and assembles
// them into a canonical BuildRequest. Validation is all-or-nothing: a
// BuildRequest only ever exists fully valid.
package request

import (
	"net/url"
	"strconv"

	"git.home.luguber.info/inful/buildrunner/internal/errors"
)

const maxNameLength = 100

// Length bounds for an abbreviated or full commit SHA.
const (
	minSHALength = 12
	maxSHALength = 40
)

// BuildRequest is the validated, typed set of build parameters assembled
// from query parameters. Immutable once assembled; it has no identity or
// lifecycle beyond the HTTP request it was built for.
type BuildRequest struct {
	Owner          string
	Repo           string
	HeadSHA        string
	InstallationID int64
	// RawInstallationID preserves the string form as received; the
	// executor protocol forwards it untouched.
	RawInstallationID string
	UploadURL         string
}

// IsValidOwnerRepo reports whether value is acceptable as a GitHub owner or
// repository name: non-empty, at most 100 characters, charset
// [A-Za-z0-9._-]. Slashes and other punctuation are rejected so that no
// path-traversal-like value ever reaches the executor.
func IsValidOwnerRepo(value string) bool {
	if value == "" || len(value) > maxNameLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// IsValidHeadSHA reports whether value looks like a commit SHA: hex digits
// only (either case), length between 12 and 40.
func IsValidHeadSHA(value string) bool {
	if len(value) < minSHALength || len(value) > maxSHALength {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ParseInstallationID parses a GitHub App installation id from its decimal
// string form. Zero, negative values, and non-numeric strings are invalid.
func ParseInstallationID(value string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Validate assembles a BuildRequest from query parameters. It returns an
// error naming the first failing field; callers must treat any error as a
// single "invalid query params" rejection, never a partial result.
func Validate(params url.Values) (*BuildRequest, error) {
	owner := params.Get("owner")
	if !IsValidOwnerRepo(owner) {
		return nil, invalidField("owner")
	}

	repo := params.Get("repo")
	if !IsValidOwnerRepo(repo) {
		return nil, invalidField("repo")
	}

	headSHA := params.Get("head_sha")
	if !IsValidHeadSHA(headSHA) {
		return nil, invalidField("head_sha")
	}

	rawID := params.Get("installation_id")
	id, ok := ParseInstallationID(rawID)
	if !ok {
		return nil, invalidField("installation_id")
	}

	uploadURL := params.Get("upload_url")
	if uploadURL == "" {
		return nil, invalidField("upload_url")
	}

	return &BuildRequest{
		Owner:             owner,
		Repo:              repo,
		HeadSHA:           headSHA,
		InstallationID:    id,
		RawInstallationID: rawID,
		UploadURL:         uploadURL,
	}, nil
}

func invalidField(field string) *errors.RunnerError {
	return errors.ValidationError("invalid query params").
		WithContext("field", field).
		Build()
}
