package connection

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/ncobase/todox/data/config"

	"github.com/redis/go-redis/v9"
)

// Connections struct to hold all database connections and clients
type Connections struct {
	DBM    *DBManager
	RC     *redis.Client
	closed bool
	mu     sync.Mutex
}

// New creates a new Connections
func New(conf *config.Config) (*Connections, error) {
	c := &Connections{}
	var err error

	if conf.Database != nil && conf.Database.Master != nil && conf.Database.Master.Source != "" {
		c.DBM, err = NewDBManager(conf.Database)
		if err != nil {
			return nil, err
		}
	}

	if conf.Redis != nil && conf.Redis.Addr != "" {
		c.RC, err = newRedisClient(conf.Redis)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Close closes all data connections
func (d *Connections) Close() (errs []error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	if d.RC != nil {
		if err := d.pingRedis(context.Background()); err == nil {
			if err := d.RC.Close(); err != nil {
				errs = append(errs, errors.New("redis close error: "+err.Error()))
			}
		}
		d.RC = nil
	}

	if d.DBM != nil {
		if err := d.DBM.Close(); err != nil {
			errs = append(errs, errors.New("database close error: "+err.Error()))
		}
		d.DBM = nil
	}

	d.closed = true
	return errs
}

// DB returns the master database connection for write operations
func (d *Connections) DB() *sql.DB {
	if d.DBM != nil {
		return d.DBM.Master()
	}
	return nil
}

// ReadDB returns a slave database connection for read operations
func (d *Connections) ReadDB() (*sql.DB, error) {
	if d.DBM != nil {
		return d.DBM.Slave()
	}
	return nil, errors.New("no database connection available")
}

// pingRedis verifies the redis connection is still alive
func (d *Connections) pingRedis(ctx context.Context) error {
	if d.RC == nil {
		return errors.New("redis client is nil")
	}
	return d.RC.Ping(ctx).Err()
}
