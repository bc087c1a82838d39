package storage

import "context"

type prefixed struct {
	inner  Store
	prefix string
}

// Prefix returns a view of inner where every key is namespaced by prefix.
func Prefix(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

func (p *prefixed) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	return p.inner.Update(ctx, p.prefix+key, fn)
}
