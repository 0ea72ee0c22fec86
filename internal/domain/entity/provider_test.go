package entity

import "testing"

func TestVerificationProvider_Supports(t *testing.T) {
	scoped := &VerificationProvider{
		ID:                     "govcheck",
		SupportedDocumentTypes: []string{"passport", "national_id"},
	}
	if !scoped.Supports("passport") {
		t.Error("listed type must be supported")
	}
	if scoped.Supports("diploma") {
		t.Error("unlisted type must not be supported")
	}

	open := &VerificationProvider{ID: "crossborder"}
	if !open.Supports("diploma") {
		t.Error("a provider with no listed types accepts any type")
	}
}

func TestIsTerminalProviderStatus(t *testing.T) {
	for _, status := range []string{ProviderStatusVerified, ProviderStatusRejected, ProviderStatusFailed} {
		if !IsTerminalProviderStatus(status) {
			t.Errorf("%s must be terminal", status)
		}
	}
	if IsTerminalProviderStatus(ProviderStatusInProgress) {
		t.Error("in_progress must not be terminal")
	}
	if IsTerminalProviderStatus("unknown") {
		t.Error("unknown status must not be terminal")
	}
}
