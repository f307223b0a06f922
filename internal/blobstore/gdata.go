package blobstore

import (
	"context"
	"fmt"

	"github.com/quasilyte/gdata/v2"
)

// gdataObject groups every formation blob under one gdata object.
const gdataObject = "formation"

// GData stores blobs in the per-user application data directory managed by gdata.
type GData struct {
	manager *gdata.Manager
}

// OpenGData opens (and creates on first use) the data directory for appName.
func OpenGData(appName string) (*GData, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open gdata for %s: %w", appName, err)
	}
	return &GData{manager: m}, nil
}

func (g *GData) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !g.manager.ObjectPropExists(gdataObject, key) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	data, err := g.manager.LoadObjectProp(gdataObject, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return data, nil
}

func (g *GData) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.manager.SaveObjectProp(gdataObject, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
