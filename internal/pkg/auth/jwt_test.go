package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", TokenIssuer: "schooldesk.test"})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService()
	token, err := svc.IssueToken("staff-1", "ADMIN", "org-1", "branch-1", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "org-1", claims.OrgID)
	assert.Equal(t, "branch-1", claims.BranchID)
}

func TestValidateRejects(t *testing.T) {
	svc := newTestService()

	expired, err := svc.IssueToken("staff-1", "ADMIN", "org-1", "", -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	other := NewJWTService(JWTConfig{SecretKey: "other", TokenIssuer: "schooldesk.test"})
	forged, err := other.IssueToken("staff-1", "ADMIN", "org-1", "", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewJWTService(JWTConfig{SecretKey: "test-secret", TokenIssuer: "elsewhere"})
	foreign, err := wrongIssuer.IssueToken("staff-1", "ADMIN", "org-1", "", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noRole, err := svc.IssueToken("staff-1", "", "org-1", "", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateAndExtractClaims(noRole)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "  Bearer   abc  ", want: "abc"},
		{header: "", wantErr: true},
		{header: "abc.def.ghi", wantErr: true},
		{header: "Bearer ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
