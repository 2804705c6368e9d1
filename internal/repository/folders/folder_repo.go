package folders

import (
	"math/rand/v2"
	"strings"
	"todoKeeper/internal/logger"
	"todoKeeper/internal/models/folder"
	repo "todoKeeper/internal/repository"
	"todoKeeper/internal/persist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository владеет коллекцией папок и ничего не знает о задачах
type Repository struct {
	data  *persist.Adapter[[]folder.Folder]
	newID func() string
	color func() string
}

type Option func(*Repository)

func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) {
		r.newID = gen
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(r *Repository) {
		r.color = func() string { return folder.RandomColor(rng) }
	}
}

func New(data *persist.Adapter[[]folder.Folder], options ...Option) *Repository {
	r := &Repository{
		data:  data,
		newID: func() string { return uuid.NewString() },
		color: func() string { return folder.RandomColor(nil) },
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Repository) Folders() []folder.Folder {
	current := r.data.Value()
	res := make([]folder.Folder, len(current))
	copy(res, current)
	return res
}

func (r *Repository) Get(id string) (folder.Folder, error) {
	for _, f := range r.data.Value() {
		if f.ID == id {
			return f, nil
		}
	}
	return folder.Folder{}, repo.ErrNotFound
}

func (r *Repository) Exists(id string) bool {
	_, err := r.Get(id)
	return err == nil
}

// AddFolder добавляет папку в конец со случайным цветом
func (r *Repository) AddFolder(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", repo.ErrEmptyText
	}

	created := folder.Folder{
		ID:    r.newID(),
		Name:  name,
		Color: r.color(),
	}
	r.data.Update(func(current []folder.Folder) ([]folder.Folder, bool) {
		next := make([]folder.Folder, 0, len(current)+1)
		next = append(next, current...)
		return append(next, created), true
	})

	logger.Debug("Repository: Папка создана", zap.String("folder_id", created.ID), zap.String("color", created.Color))
	return created.ID, nil
}

func (r *Repository) UpdateFolder(id string, patch folder.Patch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return repo.ErrEmptyText
	}

	changed := r.data.Update(func(current []folder.Folder) ([]folder.Folder, bool) {
		for i, f := range current {
			if f.ID != id {
				continue
			}
			next := make([]folder.Folder, len(current))
			copy(next, current)
			next[i] = patch.Apply(f)
			return next, true
		}
		return current, false
	})

	if !changed {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repository) RenameFolder(id, name string) error {
	return r.UpdateFolder(id, folder.Patch{Name: &name})
}

// DeleteFolder удаляет только папку; перенос задач делает координатор
func (r *Repository) DeleteFolder(id string) error {
	changed := r.data.Update(func(current []folder.Folder) ([]folder.Folder, bool) {
		next := make([]folder.Folder, 0, len(current))
		for _, f := range current {
			if f.ID != id {
				next = append(next, f)
			}
		}
		return next, len(next) != len(current)
	})

	if !changed {
		return repo.ErrNotFound
	}
	logger.Debug("Repository: Папка удалена", zap.String("folder_id", id))
	return nil
}

func (r *Repository) Err() error {
	return r.data.Err()
}

func (r *Repository) Flush() error {
	return r.data.Flush()
}
