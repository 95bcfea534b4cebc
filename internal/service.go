package internal

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

// ProfileRepository is the storage the service works against.
type ProfileRepository interface {
	List() ([]string, error)
	Get(name string) (*Profile, error)
	Upsert(p Profile) error
	Delete(name string) error
}

// IdentityChecker resolves credentials to an identity.
type IdentityChecker interface {
	Verify(ctx context.Context, creds Credentials) (*Identity, error)
}

var (
	_ ProfileRepository = (*Store)(nil)
	_ IdentityChecker   = (*IdentityVerifier)(nil)
)

// ProfileService is the entry point for the command layer. It enforces
// naming rules on upsert and returns classified errors stripped of storage
// and provider details.
type ProfileService struct {
	store    ProfileRepository
	verifier IdentityChecker
	log      zerolog.Logger
}

func NewProfileService(store ProfileRepository, verifier IdentityChecker, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		verifier: verifier,
		log:      logger.With().Str("component", "service").Logger(),
	}
}

func (s *ProfileService) ListProfiles() ([]string, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, s.translate("list", "", err)
	}
	return names, nil
}

func (s *ProfileService) GetProfile(name string) (*Profile, error) {
	p, err := s.store.Get(name)
	if err != nil {
		return nil, s.translate("get", name, err)
	}
	return p, nil
}

// UpsertProfile creates p or fully replaces the credentials of the profile
// with the same name.
func (s *ProfileService) UpsertProfile(p Profile) error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if p.AccessKeyID == "" || strings.IndexFunc(p.AccessKeyID, invalidCredentialRune) >= 0 {
		return invalidProfile(p.Name, "accessKeyId")
	}
	if p.SecretAccessKey.IsZero() {
		return invalidProfile(p.Name, "secretAccessKey")
	}
	if err := s.store.Upsert(p); err != nil {
		return s.translate("upsert", p.Name, err)
	}
	s.log.Info().Str("profile", p.Name).Msg("profile saved")
	return nil
}

func (s *ProfileService) DeleteProfile(name string) error {
	if err := s.store.Delete(name); err != nil {
		return s.translate("delete", name, err)
	}
	s.log.Info().Str("profile", name).Msg("profile deleted")
	return nil
}

// CheckIdentity verifies the credentials stored under name.
func (s *ProfileService) CheckIdentity(ctx context.Context, name string) (*Identity, error) {
	p, err := s.GetProfile(name)
	if err != nil {
		return nil, err
	}
	id, err := s.verifier.Verify(ctx, p.Credentials)
	if err != nil {
		return nil, s.translate("check identity", name, err)
	}
	return id, nil
}

// translate logs the full cause and returns a copy of the classified error
// without it. Unclassified errors become StoreUnavailable.
func (s *ProfileService) translate(op, name string, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindStoreUnavailable}
	}

	out := &Error{
		Kind:    e.Kind,
		Profile: e.Profile,
		Field:   e.Field,
		Code:    e.Code,
	}
	if out.Profile == "" {
		out.Profile = name
	}

	s.log.Debug().
		Str("op", op).
		Str("profile", name).
		Stringer("kind", out.Kind).
		Err(err).
		Msg("operation failed")
	return out
}

func validateName(name string) error {
	switch {
	case name == "",
		strings.TrimSpace(name) != name,
		strings.ContainsAny(name, "[]\r\n"),
		name == ini.DefaultSection:
		return invalidProfile(name, "name")
	}
	return nil
}
