package cognito

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity/types"

	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/logger"
)

const (
	testIdentityPoolID = "us-east-1:3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	testIdentityID     = "us-east-1:0d1d4c1e-1111-4222-8333-944455556666"
)

func testConfig() *Config {
	return &Config{
		Config: userpool.Config{
			Region:     "us-east-1",
			UserPoolID: "us-east-1_TestPool",
			ClientID:   "test-client",
		},
		IdentityPoolID: testIdentityPoolID,
	}
}

// syncBuffer is a log sink safe for callback goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Contains(s string) bool {
	return strings.Contains(b.String(), s)
}

func captureLogger() (*logger.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", buf), buf
}

type fakeUser struct {
	name    string
	sess    *userpool.Session
	err     error
	fetches atomic.Int32
}

func (u *fakeUser) Username() string { return u.name }

func (u *fakeUser) GetSession(context.Context) (*userpool.Session, error) {
	u.fetches.Add(1)
	return u.sess, u.err
}

type fakeDirectory struct {
	user  *fakeUser
	err   error
	calls atomic.Int32
}

func (d *fakeDirectory) CurrentUser(context.Context) (SessionUser, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	if d.user == nil {
		return nil, nil
	}
	return d.user, nil
}

type fakeIdentity struct {
	getIDErr    error
	credsErr    error
	expiration  time.Time
	getIDCalls  atomic.Int32
	credsCalls  atomic.Int32
	mu          sync.Mutex
	lastLogins  map[string]string
	lastPoolID  string
	lastIdentID string
}

var _ IdentityAPI = (*fakeIdentity)(nil)

func (f *fakeIdentity) GetId(_ context.Context, in *cognitoidentity.GetIdInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error) {
	f.getIDCalls.Add(1)
	f.mu.Lock()
	f.lastLogins = in.Logins
	f.lastPoolID = aws.ToString(in.IdentityPoolId)
	f.mu.Unlock()
	if f.getIDErr != nil {
		return nil, f.getIDErr
	}
	return &cognitoidentity.GetIdOutput{IdentityId: aws.String(testIdentityID)}, nil
}

func (f *fakeIdentity) GetCredentialsForIdentity(_ context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
	f.credsCalls.Add(1)
	f.mu.Lock()
	f.lastIdentID = aws.ToString(in.IdentityId)
	f.mu.Unlock()
	if f.credsErr != nil {
		return nil, f.credsErr
	}
	exp := f.expiration
	if exp.IsZero() {
		exp = time.Now().Add(time.Hour)
	}
	return &cognitoidentity.GetCredentialsForIdentityOutput{
		IdentityId: in.IdentityId,
		Credentials: &types.Credentials{
			AccessKeyId:  aws.String("ASIATEST"),
			SecretKey:    aws.String("secret"),
			SessionToken: aws.String("session"),
			Expiration:   aws.Time(exp),
		},
	}, nil
}

// tokenRecorder collects callback invocations.
type tokenRecorder struct {
	mu    sync.Mutex
	calls []*string
}

func (r *tokenRecorder) CallbackWithParam(token *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, token)
}

func (r *tokenRecorder) Calls() []*string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*string(nil), r.calls...)
}

func newTestAdapter(t *testing.T, dir UserDirectory, identity IdentityAPI) (*Adapter, *syncBuffer) {
	t.Helper()
	log, buf := captureLogger()
	a := NewAdapter(testConfig(), nil, identity, log, WithUserDirectory(dir))
	return a, buf
}
