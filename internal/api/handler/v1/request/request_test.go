package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basma-club/clubhub/internal/domain"
)

func strPtr(s string) *string {
	return &s
}

func TestSignupRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  SignupRequest{Email: "a@b.org", Password: "secret123", ConfirmPassword: "secret123", FullName: "Amina"},
		},
		{
			name:    "no digit",
			req:     SignupRequest{Email: "a@b.org", Password: "secretsecret", ConfirmPassword: "secretsecret", FullName: "Amina"},
			wantErr: errInvalidPassword,
		},
		{
			name:    "too short",
			req:     SignupRequest{Email: "a@b.org", Password: "abc12", ConfirmPassword: "abc12", FullName: "Amina"},
			wantErr: errInvalidPassword,
		},
		{
			name:    "mismatch",
			req:     SignupRequest{Email: "a@b.org", Password: "secret123", ConfirmPassword: "secret124", FullName: "Amina"},
			wantErr: errConfirmPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	bad := SignupRequest{Email: "nope", Password: "secret123", ConfirmPassword: "secret123", FullName: "Amina"}
	assert.Error(t, bad.Validate())
}

func TestPostRequest(t *testing.T) {
	req := PostRequest{Title: "Hello", Content: "World", Visibility: "committee_only", CommitteeTag: strPtr("Media")}
	require.NoError(t, req.Validate())

	in := req.Input([]byte("img"))
	assert.Equal(t, domain.VisibilityCommitteeOnly, in.Visibility)
	require.NotNil(t, in.CommitteeTag)
	assert.Equal(t, domain.CommitteeMedia, *in.CommitteeTag)
	assert.Equal(t, []byte("img"), in.Image)

	blank := PostRequest{Title: "Hello", Content: "World", CommitteeTag: strPtr("  ")}
	require.NoError(t, blank.Validate())
	assert.Nil(t, blank.Input(nil).CommitteeTag)

	unknown := PostRequest{Title: "Hello", Content: "World", CommitteeTag: strPtr("Chess")}
	assert.Error(t, unknown.Validate())

	badVisibility := PostRequest{Title: "Hello", Content: "World", Visibility: "friends"}
	assert.Error(t, badVisibility.Validate())
}

func TestMemberUpdateRequest(t *testing.T) {
	req := MemberUpdateRequest{
		Role:       strPtr("respo"),
		Committee:  strPtr(""),
		Committees: &[]string{"Media", "Event"},
		Status:     strPtr("active"),
	}
	require.NoError(t, req.Validate())

	u := req.Update()
	require.NotNil(t, u.Role)
	assert.Equal(t, domain.RoleRespo, *u.Role)
	assert.True(t, u.ClearCommittee)
	assert.Nil(t, u.Committee)
	assert.Equal(t, []domain.Committee{domain.CommitteeMedia, domain.CommitteeEvent}, u.Committees)

	assert.Error(t, (&MemberUpdateRequest{Role: strPtr("owner")}).Validate())
	assert.Error(t, (&MemberUpdateRequest{Committees: &[]string{"Chess"}}).Validate())
	assert.Error(t, (&MemberUpdateRequest{Status: strPtr("gone")}).Validate())
}

func TestRSVPRequest(t *testing.T) {
	assert.NoError(t, (&RSVPRequest{Status: "maybe"}).Validate())
	assert.Error(t, (&RSVPRequest{Status: ""}).Validate())
	assert.Error(t, (&RSVPRequest{Status: "yes"}).Validate())
}

func TestGrantPointsRequest(t *testing.T) {
	req := GrantPointsRequest{MemberID: "not-a-uuid", TaskDescription: "x", ComplexityScore: 3}
	assert.Error(t, req.Validate())

	req.MemberID = "7d0b5d34-5d0e-4a3e-9d1d-1f7c0f6f1b2a"
	require.NoError(t, req.Validate())
	assert.Equal(t, req.MemberID, req.Input().MemberID.String())
}
