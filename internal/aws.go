package internal

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultRegion        = "us-east-1"
	DefaultVerifyTimeout = 10 * time.Second
)

// CallerIdentityAPI is the part of the STS client the verifier uses.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

var _ CallerIdentityAPI = (*sts.Client)(nil)

// VerifierOptions configures an IdentityVerifier. Zero values pick defaults.
type VerifierOptions struct {
	Region     string
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client

	// NewClient overrides how the STS client is built from an aws.Config.
	NewClient func(cfg aws.Config) CallerIdentityAPI
}

// IdentityVerifier resolves credentials to an identity with a single
// GetCallerIdentity call. It never retries.
type IdentityVerifier struct {
	opts VerifierOptions
	log  zerolog.Logger
}

func NewIdentityVerifier(opts VerifierOptions, logger zerolog.Logger) *IdentityVerifier {
	if opts.Region == "" {
		opts.Region = DefaultRegion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultVerifyTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.NewClient == nil {
		endpoint := opts.Endpoint
		opts.NewClient = func(cfg aws.Config) CallerIdentityAPI {
			return sts.NewFromConfig(cfg, func(o *sts.Options) {
				if endpoint != "" {
					o.BaseEndpoint = aws.String(endpoint)
				}
			})
		}
	}
	return &IdentityVerifier{
		opts: opts,
		log:  logger.With().Str("component", "verifier").Logger(),
	}
}

// Verify signs a GetCallerIdentity request with creds and returns the
// identity they belong to. Malformed credentials fail before any request is
// made.
func (v *IdentityVerifier) Verify(ctx context.Context, creds Credentials) (*Identity, error) {
	if err := checkCredentials(creds); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, v.opts.Timeout)
	defer cancel()

	// Shared files are ignored so a verify never reads the credentials store.
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigFiles([]string{}),
		config.WithSharedCredentialsFiles([]string{}),
		config.WithRegion(v.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID,
			creds.SecretAccessKey.Reveal(),
			creds.SessionToken.Reveal(),
		)),
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
		config.WithHTTPClient(v.opts.HTTPClient),
	)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Err: errors.Wrap(err, "load aws config")}
	}

	start := time.Now()
	out, err := v.opts.NewClient(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		classified := classifyVerifyError(err)
		v.log.Debug().
			Str("access_key_id", creds.AccessKeyID).
			Stringer("kind", KindOf(classified)).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("identity check failed")
		return nil, classified
	}

	id := &Identity{
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
		Account: aws.ToString(out.Account),
	}
	v.log.Debug().
		Str("access_key_id", creds.AccessKeyID).
		Str("arn", id.ARN).
		Dur("elapsed", time.Since(start)).
		Msg("identity resolved")
	return id, nil
}

func checkCredentials(creds Credentials) error {
	if creds.AccessKeyID == "" || strings.IndexFunc(creds.AccessKeyID, invalidCredentialRune) >= 0 {
		return malformedCredentials("accessKeyId")
	}
	secret := creds.SecretAccessKey.Reveal()
	if secret == "" || strings.IndexFunc(secret, invalidCredentialRune) >= 0 {
		return malformedCredentials("secretAccessKey")
	}
	if strings.IndexFunc(creds.SessionToken.Reveal(), invalidCredentialRune) >= 0 {
		return malformedCredentials("sessionToken")
	}
	return nil
}

// Whitespace and control characters cannot appear in a signed header value.
func invalidCredentialRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// classifyVerifyError sorts a failed call into AuthRejected or
// NetworkFailure. Server-side faults count as the call not completing.
func classifyVerifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindNetworkFailure, Err: err}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() >= http.StatusInternalServerError {
		return &Error{Kind: KindNetworkFailure, Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorFault() == smithy.FaultServer {
			return &Error{Kind: KindNetworkFailure, Code: apiErr.ErrorCode(), Err: err}
		}
		return &Error{Kind: KindAuthRejected, Code: apiErr.ErrorCode(), Err: err}
	}

	return &Error{Kind: KindNetworkFailure, Err: err}
}
