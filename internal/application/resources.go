package application

import (
	"context"
	"fmt"

	"github.com/totegamma/momento/internal/config"
	"github.com/totegamma/momento/internal/domain"
	"github.com/totegamma/momento/internal/infra/database"
	"github.com/totegamma/momento/internal/infra/repository"
	"github.com/totegamma/momento/internal/present/rest"
	"github.com/totegamma/momento/internal/usecase"
)

// Store selects where resource rows live. A Store without a provider keeps rows in memory.
type Store struct {
	provider *database.Provider
}

// NewStore builds the configured backend. For postgres the shared client is constructed
// here so that configuration problems surface before any request is served.
func NewStore(conf config.Store) (*Store, error) {
	switch conf.Backend {
	case config.BackendMemory:
		return &Store{}, nil
	case config.BackendPostgres, "":
		provider := database.NewProvider(conf)
		if _, err := provider.Client(); err != nil {
			return nil, err
		}
		return &Store{provider: provider}, nil
	default:
		return nil, domain.ConfigurationError{Err: fmt.Errorf("unknown store backend %q", conf.Backend)}
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Ping(ctx)
}

func table[T any](s *Store, def domain.Definition) usecase.TableRepository[T] {
	if s.provider == nil {
		return repository.NewMemoryTable[T](def)
	}
	return repository.NewTableRepository[T](s.provider, def)
}

func mount[T any, C domain.CreateShape, U domain.UpdateShape](s *Store, def domain.Definition, events usecase.EventPublisher) rest.Routes {
	uc := usecase.NewResourceUsecase[T, C, U](def, table[T](s, def), events)
	return rest.NewResourceHandler(uc)
}

// Resources wires every resource type onto the store. events may be nil.
func Resources(s *Store, events usecase.EventPublisher) []rest.Routes {
	return []rest.Routes{
		mount[domain.Profile, domain.ProfileCreate, domain.ProfileUpdate](s, domain.Profiles, events),
		mount[domain.Momento, domain.MomentoCreate, domain.MomentoUpdate](s, domain.Momentos, events),
		mount[domain.Collection, domain.CollectionCreate, domain.CollectionUpdate](s, domain.Collections, events),
		mount[domain.Follow, domain.FollowCreate, domain.NoUpdate](s, domain.Follows, events),
		mount[domain.Like, domain.LikeCreate, domain.NoUpdate](s, domain.Likes, events),
		mount[domain.Comment, domain.CommentCreate, domain.CommentUpdate](s, domain.Comments, events),
	}
}
