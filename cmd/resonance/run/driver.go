// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/luxfi/log"

	"github.com/luxfi/resonance"
	"github.com/luxfi/resonance/registry"
	"github.com/luxfi/resonance/scheduler"
	"github.com/luxfi/resonance/utils/compression"
)

const (
	// maxExportSize bounds the decompressed ledger export.
	maxExportSize = 64 * 1024 * 1024

	siteTagLen = 4
)

// Identity names the [n]th participant of [role] at [site], counting from 1.
func Identity(role registry.Role, site string, n int) string {
	tag := site
	if len(tag) > siteTagLen {
		tag = tag[:siteTagLen]
	}
	return fmt.Sprintf("%s_%s_%03d", role, tag, n)
}

// Drive registers [perRole] participants of every role at every configured
// site and prepares the activation.
func Drive(ctx context.Context, logger log.Logger, e *resonance.Engine, perRole int, capture bool) (*scheduler.Preparation, error) {
	for _, site := range e.Config.SiteNames() {
		for i := range perRole {
			for _, role := range registry.Roles() {
				id := Identity(role, site, i+1)
				if err := e.Register(id, role.String(), site); err != nil {
					return nil, err
				}
				if !capture {
					continue
				}
				reading, err := e.Capture(id, site)
				if err != nil {
					return nil, err
				}
				logger.Debug("captured biofield",
					log.String("user", reading.UserHash),
					log.String("location", reading.LocationHash),
					log.String("signature", reading.Signature),
				)
			}
		}
		logger.Info("registered site",
			log.String("site", site),
			log.Int("participants", e.Registry.Count(site)),
		)
	}
	return e.Prepare(ctx)
}

// Export writes the engine's ledger to [path] as zstd-compressed JSON.
func Export(e *resonance.Engine, path string) error {
	var buf bytes.Buffer
	if err := e.Ledger.Export(&buf); err != nil {
		return err
	}
	c, err := compression.NewZstdCompressor(maxExportSize)
	if err != nil {
		return err
	}
	compressed, err := c.Compress(buf.Bytes())
	if err != nil {
		return err
	}
	return os.WriteFile(path, compressed, 0o644)
}
