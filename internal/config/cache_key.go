package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SubjectsListKey returns the Redis list key holding subjects records.
// An empty prefix falls back to the default key.
func (r *CacheKeyStruct) SubjectsListKey(prefix string) string {
	if prefix == "" {
		prefix = "class_subjects"
	}
	return fmt.Sprintf("%s:records", prefix)
}

// SubjectsFeedChannel returns the Redis pub/sub channel that carries newly
// stored records between server instances.
func (r *CacheKeyStruct) SubjectsFeedChannel(prefix string) string {
	if prefix == "" {
		prefix = "class_subjects"
	}
	return fmt.Sprintf("%s:feed", prefix)
}

var CacheKey = NewCacheKeyStruct()
