package movies

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

const (
	opServiceNew   = "movies.service.new"
	opListMovies   = "movies.list"
	opGetMovie     = "movies.get"
	opCreateMovie  = "movies.create"
	opUpdateMovie  = "movies.update"
	opUpdateRating = "movies.update_rating"
	opUpdateName   = "movies.update_name"
	opUpdateImdbID = "movies.update_imdb_id"
	opMarkSeen     = "movies.mark_seen"
	opMarkUnseen   = "movies.mark_unseen"
	opDeleteMovie  = "movies.delete"
)

// ServiceConfig describes the dependencies required by the catalog service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service implements the movie catalog operations on top of the store. All
// mutations follow the same shape: fetch the current row by IMDB id, change
// fields in memory, persist. Concurrent writers to the same IMDB id race with
// last-save-wins; the unique index on imdb_id is the only backstop.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the catalog service with its injected store handle.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{db: cfg.Database, logger: logger}, nil
}

// List returns every stored movie, or only movies whose name contains
// nameFilter when it is non-empty. Matching is case-insensitive (SQLite LIKE
// semantics). An empty result is a valid outcome, not an error.
func (s *Service) List(ctx context.Context, nameFilter string) ([]Movie, error) {
	query := s.db.WithContext(ctx)
	if nameFilter != "" {
		query = query.Where("name LIKE ? ESCAPE '\\'", "%"+escapeLike(nameFilter)+"%")
	}

	var found []Movie
	if err := query.Find(&found).Error; err != nil {
		s.logError(opListMovies, "query_failed", err, zap.String("name_filter", nameFilter))
		return nil, newServiceError(opListMovies, "query_failed", err)
	}
	return found, nil
}

// Get looks up a movie by its IMDB id. Absence is reported as a nil movie,
// not an error; the boundary decides how to render it.
func (s *Service) Get(ctx context.Context, imdbID string) (*Movie, error) {
	var stored Movie
	err := s.db.WithContext(ctx).Where("imdb_id = ?", imdbID).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logError(opGetMovie, "query_failed", err, zap.String("imdb_id", imdbID))
		return nil, newServiceError(opGetMovie, "query_failed", err)
	}
	return &stored, nil
}

// Create validates the candidate and inserts it as a new record. The store
// assigns the internal id. Fails with ErrAlreadyExists when the IMDB id is
// taken; a losing race against the unique index surfaces as
// ErrIntegrityConflict.
func (s *Service) Create(ctx context.Context, candidate Movie) (Movie, error) {
	if err := Validate(candidate); err != nil {
		return Movie{}, err
	}

	taken, err := s.imdbIDTaken(ctx, opCreateMovie, candidate.ImdbID)
	if err != nil {
		return Movie{}, err
	}
	if taken {
		return Movie{}, ErrAlreadyExists
	}

	candidate.ID = 0
	if err := s.db.WithContext(ctx).Create(&candidate).Error; err != nil {
		return Movie{}, s.translateWriteError(opCreateMovie, candidate.ImdbID, err)
	}
	return candidate, nil
}

// Update overwrites every field of the movie matching imdbID with the
// replacement's values. The matched row keeps its internal id. When the
// replacement carries a different IMDB id the new key must not belong to
// another record.
func (s *Service) Update(ctx context.Context, imdbID string, replacement Movie) error {
	if err := Validate(replacement); err != nil {
		return err
	}

	stored, err := s.fetchByImdbID(ctx, opUpdateMovie, imdbID)
	if err != nil {
		return err
	}

	if replacement.ImdbID != stored.ImdbID {
		taken, err := s.imdbIDTaken(ctx, opUpdateMovie, replacement.ImdbID)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}
	}

	stored.ImdbID = replacement.ImdbID
	stored.Name = replacement.Name
	stored.Seen = replacement.Seen
	stored.Rating = replacement.Rating
	return s.persist(ctx, opUpdateMovie, &stored)
}

// UpdateRating sets only the rating of the matched movie. The updated row is
// re-validated so a rating inconsistent with the current seen flag is
// rejected rather than stored.
func (s *Service) UpdateRating(ctx context.Context, imdbID string, rating int) error {
	stored, err := s.fetchByImdbID(ctx, opUpdateRating, imdbID)
	if err != nil {
		return err
	}

	stored.Rating = rating
	if err := Validate(stored); err != nil {
		return err
	}
	return s.persist(ctx, opUpdateRating, &stored)
}

// UpdateName sets only the name of the matched movie.
func (s *Service) UpdateName(ctx context.Context, imdbID string, name string) error {
	stored, err := s.fetchByImdbID(ctx, opUpdateName, imdbID)
	if err != nil {
		return err
	}

	stored.Name = name
	if err := Validate(stored); err != nil {
		return err
	}
	return s.persist(ctx, opUpdateName, &stored)
}

// UpdateImdbID renames the movie's IMDB id. The internal id is untouched, so
// the record stays the same row under a new external key. The new key must
// not already belong to another record.
func (s *Service) UpdateImdbID(ctx context.Context, imdbID string, newImdbID string) error {
	stored, err := s.fetchByImdbID(ctx, opUpdateImdbID, imdbID)
	if err != nil {
		return err
	}

	if newImdbID != stored.ImdbID {
		taken, err := s.imdbIDTaken(ctx, opUpdateImdbID, newImdbID)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}
	}

	stored.ImdbID = newImdbID
	if err := Validate(stored); err != nil {
		return err
	}
	return s.persist(ctx, opUpdateImdbID, &stored)
}

// MarkSeen flags the movie as seen and assigns its rating in one update.
func (s *Service) MarkSeen(ctx context.Context, imdbID string, rating int) error {
	stored, err := s.fetchByImdbID(ctx, opMarkSeen, imdbID)
	if err != nil {
		return err
	}

	stored.Seen = true
	stored.Rating = rating
	if err := Validate(stored); err != nil {
		return err
	}
	return s.persist(ctx, opMarkSeen, &stored)
}

// MarkUnseen flags the movie as not seen and clears any rating it carried.
func (s *Service) MarkUnseen(ctx context.Context, imdbID string) error {
	stored, err := s.fetchByImdbID(ctx, opMarkUnseen, imdbID)
	if err != nil {
		return err
	}

	stored.Seen = false
	stored.Rating = 0
	return s.persist(ctx, opMarkUnseen, &stored)
}

// Delete removes the matched movie permanently by its internal id.
func (s *Service) Delete(ctx context.Context, imdbID string) error {
	stored, err := s.fetchByImdbID(ctx, opDeleteMovie, imdbID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&Movie{}, stored.ID).Error; err != nil {
		s.logError(opDeleteMovie, "delete_failed", err, zap.String("imdb_id", imdbID))
		return newServiceError(opDeleteMovie, "delete_failed", err)
	}
	return nil
}

func (s *Service) fetchByImdbID(ctx context.Context, operation, imdbID string) (Movie, error) {
	var stored Movie
	err := s.db.WithContext(ctx).Where("imdb_id = ?", imdbID).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Movie{}, ErrNotFound
	}
	if err != nil {
		s.logError(operation, "movie_select_failed", err, zap.String("imdb_id", imdbID))
		return Movie{}, newServiceError(operation, "movie_select_failed", err)
	}
	return stored, nil
}

func (s *Service) imdbIDTaken(ctx context.Context, operation, imdbID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Movie{}).Where("imdb_id = ?", imdbID).Count(&count).Error
	if err != nil {
		s.logError(operation, "uniqueness_check_failed", err, zap.String("imdb_id", imdbID))
		return false, newServiceError(operation, "uniqueness_check_failed", err)
	}
	return count > 0, nil
}

func (s *Service) persist(ctx context.Context, operation string, movie *Movie) error {
	if err := s.db.WithContext(ctx).Save(movie).Error; err != nil {
		return s.translateWriteError(operation, movie.ImdbID, err)
	}
	return nil
}

// translateWriteError maps a unique-index rejection onto the integrity
// conflict kind; the pre-checks should make this unreachable outside of a
// write race, so it is worth a warning when it fires.
func (s *Service) translateWriteError(operation, imdbID string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.loggerOrDefault().Warn("store rejected write on imdb id uniqueness",
			zap.String("operation", operation),
			zap.String("imdb_id", imdbID))
		return ErrIntegrityConflict
	}
	s.logError(operation, "movie_save_failed", err, zap.String("imdb_id", imdbID))
	return newServiceError(operation, "movie_save_failed", err)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("movie catalog error", attrs...)
}
