// Package registry registers running service instances into etcd so
// gateways and peers can discover them. Registration rides on a lease
// that is kept alive for the lifetime of the process; when the process
// dies the keys expire with the lease.
package registry

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/veaiops/veaiops/pkg/utils/json"
)

// instanceRecord is the JSON value stored per registered instance.
type instanceRecord struct {
	Service   string `json:"service"`
	Addr      string `json:"addr"`
	StartedAt string `json:"started_at"`
}

// Registrar registers one service instance under
// <prefix>/<service>/<instance-id> with a kept-alive lease.
type Registrar struct {
	opts        *Options
	serviceName string
	addr        string

	client  *clientv3.Client
	leaseID clientv3.LeaseID
	stopCh  chan struct{}
}

// NewRegistrar creates a Registrar for the given service instance.
func NewRegistrar(opts *Options, serviceName, addr string) *Registrar {
	return &Registrar{
		opts:        opts,
		serviceName: serviceName,
		addr:        addr,
		stopCh:      make(chan struct{}),
	}
}

// Name implements the Runnable interface.
func (r *Registrar) Name() string {
	return "etcd-registrar"
}

// Start connects to etcd, grants a lease and writes the instance key.
func (r *Registrar) Start(ctx context.Context) error {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   r.opts.Endpoints,
		DialTimeout: r.opts.DialTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to etcd: %w", err)
	}
	r.client = client

	leaseResp, err := client.Grant(ctx, r.opts.LeaseTTL)
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}
	r.leaseID = leaseResp.ID

	ch, err := client.KeepAlive(context.Background(), r.leaseID)
	if err != nil {
		return fmt.Errorf("failed to keep alive lease: %w", err)
	}
	go func() {
		for {
			select {
			case <-r.stopCh:
				return
			case _, ok := <-ch:
				if !ok {
					logger.Warnw("Etcd keepalive channel closed", "service", r.serviceName)
					return
				}
			}
		}
	}()

	hash := md5.Sum([]byte(r.addr))
	instanceID := hex.EncodeToString(hash[:8])
	key := fmt.Sprintf("%s/%s/%s", r.opts.Prefix, r.serviceName, instanceID)

	value, err := json.Marshal(instanceRecord{
		Service:   r.serviceName,
		Addr:      r.addr,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal instance record: %w", err)
	}

	if _, err := client.Put(ctx, key, string(value), clientv3.WithLease(r.leaseID)); err != nil {
		return fmt.Errorf("failed to register instance key: %w", err)
	}

	logger.Infow("Service instance registered", "service", r.serviceName, "addr", r.addr, "key", key)
	return nil
}

// Stop revokes the lease so the instance keys disappear immediately.
func (r *Registrar) Stop(ctx context.Context) error {
	close(r.stopCh)
	if r.client == nil {
		return nil
	}
	if r.leaseID != 0 {
		revokeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, _ = r.client.Revoke(revokeCtx, r.leaseID)
		logger.Infow("Service instance deregistered", "service", r.serviceName)
	}
	return r.client.Close()
}
