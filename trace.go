// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package dbinit

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// openTraced opens dsn through a connector that writes every statement to print.
func openTraced(driverName, dsn string, print func(args ...any)) (*sql.DB, error) {
	// sql.Open does not connect; it is the only way to reach a registered driver.
	lookup, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	drv := lookup.Driver()
	lookup.Close()

	var base driver.Connector
	if dc, ok := drv.(driver.DriverContext); ok {
		if base, err = dc.OpenConnector(dsn); err != nil {
			return nil, err
		}
	} else {
		base = dsnConnector{dsn: dsn, driver: drv}
	}
	return sql.OpenDB(&traceConnector{base: base, print: print}), nil
}

// dsnConnector adapts a driver without DriverContext to driver.Connector.
type dsnConnector struct {
	dsn    string
	driver driver.Driver
}

func (c dsnConnector) Connect(context.Context) (driver.Conn, error) { return c.driver.Open(c.dsn) }
func (c dsnConnector) Driver() driver.Driver                        { return c.driver }

type traceConnector struct {
	base  driver.Connector
	print func(args ...any)
}

func (c *traceConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.base.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &traceConn{Conn: conn, print: c.print}, nil
}

func (c *traceConnector) Driver() driver.Driver { return c.base.Driver() }

// traceConn forwards to the driver connection and traces each statement
// once: when it is prepared, or when it runs without preparation.
type traceConn struct {
	driver.Conn
	print func(args ...any)
}

func (c *traceConn) trace(query string) {
	c.print("SQL TRACE", query)
}

func (c *traceConn) Prepare(query string) (driver.Stmt, error) {
	c.trace(query)
	return c.Conn.Prepare(query)
}

func (c *traceConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	c.trace(query)
	if pc, ok := c.Conn.(driver.ConnPrepareContext); ok {
		return pc.PrepareContext(ctx, query)
	}
	return c.Conn.Prepare(query)
}

func (c *traceConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	ec, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	res, err := ec.ExecContext(ctx, query, args)
	if !errors.Is(err, driver.ErrSkip) {
		c.trace(query)
	}
	return res, err
}

func (c *traceConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	qc, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	rows, err := qc.QueryContext(ctx, query, args)
	if !errors.Is(err, driver.ErrSkip) {
		c.trace(query)
	}
	return rows, err
}

func (c *traceConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if bc, ok := c.Conn.(driver.ConnBeginTx); ok {
		return bc.BeginTx(ctx, opts)
	}
	if opts.ReadOnly || opts.Isolation != driver.IsolationLevel(sql.LevelDefault) {
		return nil, errors.New("driver does not support transaction options")
	}
	return c.Conn.Begin() //nolint:staticcheck // fallback for drivers without BeginTx
}

func (c *traceConn) Ping(ctx context.Context) error {
	if p, ok := c.Conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *traceConn) ResetSession(ctx context.Context) error {
	if r, ok := c.Conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *traceConn) IsValid() bool {
	if v, ok := c.Conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

func (c *traceConn) CheckNamedValue(nv *driver.NamedValue) error {
	if nc, ok := c.Conn.(driver.NamedValueChecker); ok {
		return nc.CheckNamedValue(nv)
	}
	return driver.ErrSkip
}
