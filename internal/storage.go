package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/juju/utils/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

const (
	keyAccessKeyID     = "aws_access_key_id"
	keySecretAccessKey = "aws_secret_access_key"
	keySessionToken    = "aws_session_token"
)

// Secrets may legitimately contain '#', ';' or a trailing '\', and AWS
// tooling only understands '=' as the delimiter. Profile names are flat: a
// dotted name is not a child of the profile before the dot, and names never
// contain a newline.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	KeyValueDelimiters:      "=",
	ChildSectionDelimiter:   "\n",
}

func init() {
	// "key = value" without column alignment, the layout the AWS CLI writes.
	ini.PrettyFormat = false
	ini.PrettyEqual = true
}

// Store is a credentials file in the AWS shared credentials format. Every
// call re-reads the file; mutations rewrite it atomically and leave the
// text of other sections untouched. Sections are strict: one missing an
// access key or secret makes the whole file unavailable rather than being
// skipped.
type Store struct {
	mu   sync.RWMutex
	path string
	log  zerolog.Logger
}

func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  logger.With().Str("component", "store").Logger(),
	}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// List returns profile names in file order. A missing file is an empty store.
func (s *Store) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	return profileNames(f.ini), nil
}

// Get returns the named profile.
func (s *Store) Get(name string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	sec, ok := profileSection(f.ini, name)
	if !ok {
		return nil, notFound(name)
	}
	return profileFromSection(sec), nil
}

// Upsert inserts p or replaces the credential keys of an existing profile.
// Other keys and comments in the section are kept. A zero session token
// removes aws_session_token.
func (s *Store) Upsert(p Profile) error {
	if err := validateProfile(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	_, exists := profileSection(f.ini, p.Name)

	want := profileNames(f.ini)
	if !exists {
		want = append(want, p.Name)
	}
	data, ok := f.spliceUpsert(p)
	if ok && readsBack(f, data, want, &p) {
		err = s.save(data)
	} else {
		s.log.Debug().Str("profile", p.Name).Msg("rewriting the whole credentials file")
		err = s.rewrite(f, func(file *ini.File) error {
			return setProfile(file, p)
		})
	}
	if err != nil {
		return err
	}

	s.log.Debug().
		Str("profile", p.Name).
		Bool("created", !exists).
		Bool("session_token", !p.SessionToken.IsZero()).
		Msg("profile saved")
	return nil
}

// Delete removes the named profile. Nothing is written when it is absent.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := profileSection(f.ini, name); !ok {
		return notFound(name)
	}

	var want []string
	for _, n := range profileNames(f.ini) {
		if n != name {
			want = append(want, n)
		}
	}
	data, ok := f.spliceDelete(name)
	if ok && readsBack(f, data, want, nil) {
		err = s.save(data)
	} else {
		s.log.Debug().Str("profile", name).Msg("rewriting the whole credentials file")
		err = s.rewrite(f, func(file *ini.File) error {
			file.DeleteSection(name)
			return nil
		})
	}
	if err != nil {
		return err
	}

	s.log.Debug().Str("profile", name).Msg("profile deleted")
	return nil
}

func (s *Store) load() (*credentialsFile, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newCredentialsFile(ini.Empty(loadOptions), nil), nil
		}
		return nil, storeUnavailable(errors.Wrapf(err, "read %s", s.path))
	}

	f, err := parseCredentials(b)
	if err != nil {
		return nil, storeUnavailable(errors.Wrapf(err, "parse %s", s.path))
	}
	return newCredentialsFile(f, b), nil
}

// readsBack reports whether spliced text parses to the names in want, with
// p stored under its name and every other profile unchanged.
func readsBack(old *credentialsFile, data []byte, want []string, p *Profile) bool {
	f, err := parseCredentials(data)
	if err != nil {
		return false
	}

	got := profileNames(f)
	if len(got) != len(want) {
		return false
	}
	for i, name := range want {
		if got[i] != name {
			return false
		}
		sec, _ := profileSection(f, name)
		current := profileFromSection(sec)
		if p != nil && name == p.Name {
			if !sameCredentials(current.Credentials, p.Credentials) {
				return false
			}
			continue
		}
		before, _ := profileSection(old.ini, name)
		if !sameCredentials(current.Credentials, profileFromSection(before).Credentials) {
			return false
		}
	}
	return true
}

// rewrite applies change to the parsed file and renders all of it.
func (s *Store) rewrite(f *credentialsFile, change func(*ini.File) error) error {
	if err := change(f.ini); err != nil {
		return storeUnavailable(err)
	}
	data, err := renderCredentials(f.ini)
	if err != nil {
		return storeUnavailable(errors.Wrap(err, "render credentials"))
	}
	return s.save(data)
}

func (s *Store) save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return storeUnavailable(errors.Wrapf(err, "create %s", filepath.Dir(s.path)))
	}

	// temp file in the same directory, then rename over the original
	if err := utils.AtomicWriteFile(s.path, data, 0600); err != nil {
		return storeUnavailable(errors.Wrapf(err, "write %s", s.path))
	}
	return nil
}

func setProfile(f *ini.File, p Profile) error {
	sec, ok := profileSection(f, p.Name)
	if !ok {
		var err error
		if sec, err = f.NewSection(p.Name); err != nil {
			return errors.Wrapf(err, "add section %q", p.Name)
		}
	}

	sec.Key(keyAccessKeyID).SetValue(p.AccessKeyID)
	sec.Key(keySecretAccessKey).SetValue(p.SecretAccessKey.Reveal())
	if p.SessionToken.IsZero() {
		sec.DeleteKey(keySessionToken)
	} else {
		sec.Key(keySessionToken).SetValue(p.SessionToken.Reveal())
	}
	return nil
}

func sameCredentials(a, b Credentials) bool {
	return a.AccessKeyID == b.AccessKeyID &&
		a.SecretAccessKey.Equal(b.SecretAccessKey) &&
		a.SessionToken.Equal(b.SessionToken)
}

// parseCredentials parses data and checks that every profile section has
// both required keys.
func parseCredentials(data []byte) (*ini.File, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, err
	}

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		for _, name := range []string{keyAccessKeyID, keySecretAccessKey} {
			k, err := sec.GetKey(name)
			if err != nil || strings.TrimSpace(k.Value()) == "" {
				return nil, errors.Errorf("section [%s]: %s is missing", sec.Name(), name)
			}
		}
	}
	return f, nil
}

func renderCredentials(f *ini.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func profileSection(f *ini.File, name string) (*ini.Section, bool) {
	if name == ini.DefaultSection {
		return nil, false
	}
	sec, err := f.GetSection(name)
	if err != nil {
		return nil, false
	}
	return sec, true
}

// Values are read raw; Key.String would expand %(name)s references.
func profileFromSection(sec *ini.Section) *Profile {
	p := &Profile{
		Name: sec.Name(),
		Credentials: Credentials{
			AccessKeyID:     sec.Key(keyAccessKeyID).Value(),
			SecretAccessKey: NewSecret(sec.Key(keySecretAccessKey).Value()),
		},
	}
	if k, err := sec.GetKey(keySessionToken); err == nil {
		p.SessionToken = NewSecret(k.Value())
	}
	return p
}

func validateProfile(p Profile) error {
	if p.Name == "" || p.Name == ini.DefaultSection || strings.ContainsAny(p.Name, "[]\r\n") {
		return invalidProfile(p.Name, "name")
	}
	if p.AccessKeyID == "" || strings.ContainsAny(p.AccessKeyID, "\r\n") {
		return invalidProfile(p.Name, "accessKeyId")
	}
	if p.SecretAccessKey.IsZero() || strings.ContainsAny(p.SecretAccessKey.Reveal(), "\r\n") {
		return invalidProfile(p.Name, "secretAccessKey")
	}
	if strings.ContainsAny(p.SessionToken.Reveal(), "\r\n") {
		return invalidProfile(p.Name, "sessionToken")
	}
	return nil
}
