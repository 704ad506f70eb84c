package db

import (
	"github.com/fsdevblog/shortlinks/internal/db/memory"
)

// MemoryStorage хранилище в памяти процесса. Данные теряются при перезапуске.
type MemoryStorage struct {
	*memory.MStorage
}

func NewMemStorage() *MemoryStorage {
	return &MemoryStorage{
		MStorage: memory.NewMemStorage(),
	}
}
