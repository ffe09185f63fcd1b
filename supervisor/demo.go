// /home/krylon/go/src/github.com/blicero/courier/supervisor/demo.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-21 11:02:40 krylon>

package supervisor

import (
	"fmt"
	"time"

	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

func demoAssets(firstID int64, cnt int) []objects.Asset {
	var assets = make([]objects.Asset, cnt)

	for i := range assets {
		var id = firstID + int64(i)
		assets[i] = objects.Asset{
			ID:         id,
			SourceURI:  fmt.Sprintf("https://picsum.photos/300/300?random=%d", id),
			OrderIndex: i,
		}
	}

	return assets
} // func demoAssets(firstID int64, cnt int) []objects.Asset

// DemoItems returns the sample Items shown when the store cannot be
// reached: one that becomes due two minutes after now, and one that was
// notified five minutes before now. The slide counts are those of the
// whole carousels, only the first few slides come with a preview.
func DemoItems(now time.Time) []objects.Item {
	return []objects.Item{
		{
			ID:            1,
			Status:        status.Scheduled,
			ScheduledTime: now.Add(2 * time.Minute),
			PayloadCount:  12,
			Caption:       "Check out this amazing carousel post with 12 slides! 🔥\n\n#instagram #carousel #socialmedia #content",
			Assets:        demoAssets(1, 6),
		},
		{
			ID:            2,
			Status:        status.Notified,
			ScheduledTime: now.Add(-5 * time.Minute),
			PayloadCount:  8,
			Caption:       "Another great post ready to go! 📸\n\n#photography #design #creative",
			Assets:        demoAssets(7, 3),
		},
	}
} // func DemoItems(now time.Time) []objects.Item
