package internal

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const callerIdentityResponse = `<GetCallerIdentityResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <GetCallerIdentityResult>
    <Arn>arn:aws:iam::123456789012:user/dev</Arn>
    <UserId>AIDAEXAMPLEUSERID</UserId>
    <Account>123456789012</Account>
  </GetCallerIdentityResult>
  <ResponseMetadata>
    <RequestId>01234567-89ab-cdef-0123-456789abcdef</RequestId>
  </ResponseMetadata>
</GetCallerIdentityResponse>`

const stsErrorResponse = `<ErrorResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <Error>
    <Type>%s</Type>
    <Code>%s</Code>
    <Message>%s</Message>
  </Error>
  <RequestId>01234567-89ab-cdef-0123-456789abcdef</RequestId>
</ErrorResponse>`

// fakeSTS answers GetCallerIdentity. Requests signed with an access key in
// valid succeed; anything else is rejected with InvalidClientTokenId.
type fakeSTS struct {
	*httptest.Server
	requests atomic.Int32
	valid    map[string]bool
	status   atomic.Int32
	delay    atomic.Int64
}

func newFakeSTS(t *testing.T, validKeys ...string) *fakeSTS {
	t.Helper()
	f := &fakeSTS{valid: map[string]bool{}}
	for _, k := range validKeys {
		f.valid[k] = true
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSTS) handle(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	if d := time.Duration(f.delay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "text/xml")
	if status := int(f.status.Load()); status >= 500 {
		w.WriteHeader(status)
		fmt.Fprintf(w, stsErrorResponse, "Receiver", "InternalFailure", "internal failure")
		return
	}

	if err := r.ParseForm(); err != nil || r.PostForm.Get("Action") != "GetCallerIdentity" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, stsErrorResponse, "Sender", "InvalidAction", "unexpected request")
		return
	}

	if !f.valid[signingKey(r)] {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprintf(w, stsErrorResponse, "Sender", "InvalidClientTokenId", "The security token included in the request is invalid.")
		return
	}

	fmt.Fprint(w, callerIdentityResponse)
}

// signingKey pulls the access key id out of a SigV4 Authorization header.
func signingKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	i := strings.Index(auth, "Credential=")
	if i < 0 {
		return ""
	}
	cred := auth[i+len("Credential="):]
	if j := strings.Index(cred, "/"); j >= 0 {
		return cred[:j]
	}
	return ""
}

func newTestVerifier(endpoint string, timeout time.Duration) *IdentityVerifier {
	return NewIdentityVerifier(VerifierOptions{
		Endpoint: endpoint,
		Timeout:  timeout,
	}, zerolog.Nop())
}

func testCredentials(accessKeyID string) Credentials {
	return Credentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: NewSecret("wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY"),
	}
}

func TestVerifySuccess(t *testing.T) {
	srv := newFakeSTS(t, "AKIAVALID")
	v := newTestVerifier(srv.URL, time.Second)

	id, err := v.Verify(context.Background(), testCredentials("AKIAVALID"))
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:user/dev", id.ARN)
	assert.Equal(t, "AIDAEXAMPLEUSERID", id.UserID)
	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "ARN: arn:aws:iam::123456789012:user/dev, User ID: AIDAEXAMPLEUSERID, Account: 123456789012", id.Display())
	assert.EqualValues(t, 1, srv.requests.Load())
}

func TestVerifyAuthRejected(t *testing.T) {
	srv := newFakeSTS(t)
	v := newTestVerifier(srv.URL, time.Second)

	_, err := v.Verify(context.Background(), testCredentials("AKIA123"))
	require.ErrorIs(t, err, ErrAuthRejected)
	assert.Equal(t, "InvalidClientTokenId", err.(*Error).Code)
	assert.EqualValues(t, 1, srv.requests.Load())
}

func TestVerifyServerErrorIsNetworkFailureWithoutRetry(t *testing.T) {
	srv := newFakeSTS(t, "AKIAVALID")
	srv.status.Store(http.StatusServiceUnavailable)
	v := newTestVerifier(srv.URL, time.Second)

	_, err := v.Verify(context.Background(), testCredentials("AKIAVALID"))
	require.ErrorIs(t, err, ErrNetworkFailure)
	assert.EqualValues(t, 1, srv.requests.Load(), "verify must not retry")
}

func TestVerifyTimeout(t *testing.T) {
	srv := newFakeSTS(t, "AKIAVALID")
	srv.delay.Store(int64(2 * time.Second))
	v := newTestVerifier(srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := v.Verify(context.Background(), testCredentials("AKIAVALID"))
	require.ErrorIs(t, err, ErrNetworkFailure)
	assert.Less(t, time.Since(start), time.Second)
}

func TestVerifyCancelled(t *testing.T) {
	srv := newFakeSTS(t, "AKIAVALID")
	srv.delay.Store(int64(2 * time.Second))
	v := newTestVerifier(srv.URL, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := v.Verify(ctx, testCredentials("AKIAVALID"))
	require.ErrorIs(t, err, ErrNetworkFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyConnectionRefused(t *testing.T) {
	srv := newFakeSTS(t)
	url := srv.URL
	srv.Close()

	_, err := newTestVerifier(url, time.Second).Verify(context.Background(), testCredentials("AKIAVALID"))
	require.ErrorIs(t, err, ErrNetworkFailure)
}

func TestVerifyMalformedCredentialsSkipsNetwork(t *testing.T) {
	srv := newFakeSTS(t, "AKIAVALID")
	v := newTestVerifier(srv.URL, time.Second)

	tests := []struct {
		name  string
		creds Credentials
		field string
	}{
		{"empty access key", Credentials{SecretAccessKey: NewSecret("s")}, "accessKeyId"},
		{"space in access key", Credentials{AccessKeyID: "AKIA 1", SecretAccessKey: NewSecret("s")}, "accessKeyId"},
		{"empty secret", Credentials{AccessKeyID: "AKIA"}, "secretAccessKey"},
		{"control char in secret", Credentials{AccessKeyID: "AKIA", SecretAccessKey: NewSecret("s\x00")}, "secretAccessKey"},
		{"newline in token", Credentials{AccessKeyID: "AKIA", SecretAccessKey: NewSecret("s"), SessionToken: NewSecret("t\n")}, "sessionToken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.creds)
			require.ErrorIs(t, err, ErrMalformedCredentials)
			assert.Equal(t, tt.field, err.(*Error).Field)
		})
	}
	assert.EqualValues(t, 0, srv.requests.Load())
}

func TestVerifyDoesNotLogSecrets(t *testing.T) {
	srv := newFakeSTS(t)
	var buf bytes.Buffer
	v := NewIdentityVerifier(VerifierOptions{Endpoint: srv.URL, Timeout: time.Second}, zerolog.New(&buf).Level(zerolog.DebugLevel))

	creds := testCredentials("AKIA123")
	creds.SessionToken = NewSecret("FwoGZXIvYXdzEXAMPLETOKEN")
	_, err := v.Verify(context.Background(), creds)
	require.Error(t, err)

	assert.Contains(t, buf.String(), "AKIA123")
	assert.NotContains(t, buf.String(), creds.SecretAccessKey.Reveal())
	assert.NotContains(t, buf.String(), creds.SessionToken.Reveal())
}

type mockCallerIdentity struct {
	mock.Mock
}

func (m *mockCallerIdentity) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sts.GetCallerIdentityOutput)
	return out, args.Error(1)
}

func TestVerifySignsWithSuppliedCredentials(t *testing.T) {
	client := &mockCallerIdentity{}
	client.On("GetCallerIdentity", mock.Anything, mock.Anything).Return(&sts.GetCallerIdentityOutput{
		Arn:     aws.String("arn:aws:sts::123456789012:assumed-role/dev/session"),
		UserId:  aws.String("AROAEXAMPLE:session"),
		Account: aws.String("123456789012"),
	}, nil).Once()

	var got aws.Credentials
	v := NewIdentityVerifier(VerifierOptions{
		Region: "eu-west-1",
		NewClient: func(cfg aws.Config) CallerIdentityAPI {
			assert.Equal(t, "eu-west-1", cfg.Region)
			var err error
			got, err = cfg.Credentials.Retrieve(context.Background())
			require.NoError(t, err)
			return client
		},
	}, zerolog.Nop())

	creds := testCredentials("ASIATEMP")
	creds.SessionToken = NewSecret("token")
	id, err := v.Verify(context.Background(), creds)
	require.NoError(t, err)

	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "ASIATEMP", got.AccessKeyID)
	assert.Equal(t, creds.SecretAccessKey.Reveal(), got.SecretAccessKey)
	assert.Equal(t, "token", got.SessionToken)
	client.AssertExpectations(t)
}

func TestVerifierDefaults(t *testing.T) {
	v := NewIdentityVerifier(VerifierOptions{}, zerolog.Nop())
	assert.Equal(t, DefaultRegion, v.opts.Region)
	assert.Equal(t, DefaultVerifyTimeout, v.opts.Timeout)
	assert.NotNil(t, v.opts.HTTPClient)
	assert.NotNil(t, v.opts.NewClient)
}
