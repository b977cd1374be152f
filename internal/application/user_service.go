package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lukian/user-api/internal/domain/entity"
	repo "github.com/lukian/user-api/internal/domain/repository"
	"github.com/lukian/user-api/pkg/helpers"
	"github.com/lukian/user-api/pkg/mailer"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// EligibilityError reports a registration or full update whose birth date
// falls below the configured minimum age.
type EligibilityError struct {
	MinAge int
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("user must be at least %dy.o. to be able to register", e.MinAge)
}

// Service orchestrates validation, mapping and persistence for users.
// Redis, ES and Mail are optional side channels: a nil client disables the
// corresponding behavior and never fails a request.
type Service struct {
	Repo         repo.UserRepository
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Mail         *helpers.RabbitPublisher
	MinAge       int
	CacheTTL     time.Duration
}

func NewService(r repo.UserRepository, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, mail *helpers.RabbitPublisher, minAge int, cacheTTL time.Duration) *Service {
	return &Service{
		Repo:         r,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Mail:         mail,
		MinAge:       minAge,
		CacheTTL:     cacheTTL,
	}
}

func viewKey(id int64) string {
	return "user:view:" + strconv.FormatInt(id, 10)
}

// Register validates age eligibility, persists a new user and returns its
// projection.
func (s *Service) Register(ctx context.Context, in RegisterUserInput) (UserView, error) {
	if err := s.checkEligibility(in.BirthDate); err != nil {
		return UserView{}, err
	}
	u := NewUser(in)
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return UserView{}, ErrEmailTaken
		}
		return UserView{}, err
	}

	view := ToView(u)
	s.cacheView(ctx, view)
	s.indexUser(ctx, u)
	s.sendWelcome(ctx, u)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	}
	return view, nil
}

// GetByID returns the projection for an active user, serving from the view
// cache when warm.
func (s *Service) GetByID(ctx context.Context, id int64) (UserView, error) {
	if s.Redis != nil {
		var cached UserView
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, viewKey(id), &cached); err == nil && ok {
			return cached, nil
		}
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	view := ToView(u)
	s.cacheView(ctx, view)
	return view, nil
}

// UpdateEmail applies the email-only partial update. Age is deliberately
// not re-checked: an email change cannot affect eligibility.
func (s *Service) UpdateEmail(ctx context.Context, id int64, in UpdateEmailInput) (UserView, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	ApplyEmailUpdate(in, u)
	return s.saveUpdated(ctx, u)
}

// UpdateAll replaces every editable field. The new birth date must pass
// the same eligibility gate as registration.
func (s *Service) UpdateAll(ctx context.Context, id int64, in RegisterUserInput) (UserView, error) {
	if err := s.checkEligibility(in.BirthDate); err != nil {
		return UserView{}, err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	ApplyFullUpdate(in, u)
	return s.saveUpdated(ctx, u)
}

// Delete soft-deletes the user. Unknown and already-deleted ids are
// indistinguishable and both report ErrUserNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.dropView(ctx, id)
	s.removeFromIndex(ctx, id)
	if s.Logger != nil {
		s.Logger.WithField("user_id", id).Info("user deleted")
	}
	return nil
}

// SearchByBirthDateRange returns projections of active users born within
// [from, to], in storage order. An inverted range yields an empty list.
func (s *Service) SearchByBirthDateRange(ctx context.Context, from, to time.Time) ([]UserView, error) {
	users, err := s.Repo.FindByBirthDateBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, ToView(u))
	}
	return views, nil
}

func (s *Service) checkEligibility(birthDate time.Time) error {
	if wholeYears(birthDate, time.Now().UTC()) < s.MinAge {
		return &EligibilityError{MinAge: s.MinAge}
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) saveUpdated(ctx context.Context, u *entity.User) (UserView, error) {
	if err := s.Repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return UserView{}, ErrUserNotFound
		case errors.Is(err, repo.ErrEmailTaken):
			return UserView{}, ErrEmailTaken
		}
		return UserView{}, err
	}
	view := ToView(u)
	s.cacheView(ctx, view)
	s.indexUser(ctx, u)
	return view, nil
}

func (s *Service) cacheView(ctx context.Context, view UserView) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, viewKey(view.ID), view, s.CacheTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", view.ID).Warn("view cache write failed")
	}
}

func (s *Service) dropView(ctx context.Context, id int64) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, viewKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("view cache delete failed")
	}
}

func (s *Service) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"FirstName": u.FirstName},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome mail publish failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"birth_date": u.BirthDate.Format("2006-01-02"),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (s *Service) removeFromIndex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(id, 10),
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchProfiles performs a simple multi_match search on email and name
// against the users index. Returns an empty result when ES is not wired.
func (s *Service) SearchProfiles(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
