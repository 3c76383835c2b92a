package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/ncobase/todox/data/config"
	"github.com/ncobase/todox/data/connection"

	"github.com/redis/go-redis/v9"
)

type ContextKey string

const (
	ContextKeyTransaction ContextKey = "tx"
)

var sharedInstance *Data

// Data represents the data layer implementation
type Data struct {
	Conn *connection.Connections

	mu     sync.RWMutex
	closed bool
}

// New creates new data layer
func New(cfg *config.Config, createNewInstance ...bool) (*Data, func(name ...string), error) {
	var createNew bool
	if len(createNewInstance) > 0 {
		createNew = createNewInstance[0]
	}

	// If not creating new and shared instance exists, return it
	if !createNew && sharedInstance != nil {
		cleanup := func(name ...string) {
			if errs := sharedInstance.Close(); len(errs) > 0 {
				fmt.Printf("cleanup errors: %v\n", errs)
			}
		}
		return sharedInstance, cleanup, nil
	}

	conn, err := connection.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	d := &Data{
		Conn: conn,
	}

	if !createNew {
		sharedInstance = d
	}

	cleanup := func(name ...string) {
		if errs := d.Close(); len(errs) > 0 {
			fmt.Printf("cleanup errors: %v\n", errs)
		}
	}

	return d, cleanup, nil
}

// GetMasterDB returns the master database connection for write operations
func (d *Data) GetMasterDB() *sql.DB {
	if d.Conn != nil {
		return d.Conn.DB()
	}
	return nil
}

// GetSlaveDB returns slave database connection for read operations
func (d *Data) GetSlaveDB() (*sql.DB, error) {
	if d.Conn != nil {
		return d.Conn.ReadDB()
	}
	return nil, errors.New("no database connection available")
}

// GetRedis returns the Redis client
func (d *Data) GetRedis() *redis.Client {
	if d.Conn != nil {
		return d.Conn.RC
	}
	return nil
}

// Ping checks the health of the underlying database connections
func (d *Data) Ping(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return errors.New("data layer is closed")
	}
	if d.Conn == nil || d.Conn.DBM == nil {
		return errors.New("no database connection available")
	}
	return d.Conn.DBM.Health(ctx)
}

// Close closes all data connections
func (d *Data) Close() []error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if d.Conn != nil {
		if connErrs := d.Conn.Close(); len(connErrs) > 0 {
			errs = append(errs, connErrs...)
		}
	}

	return errs
}
