package db

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/klauspost/compress/zstd"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/region"
)

const SnapshotVersion = 1

var ErrBadSnapshot = errors.New("bad region snapshot")

// SnapshotHeader is the first line of a snapshot stream.
type SnapshotHeader struct {
	Version   int       `json:"version"`
	Regions   int       `json:"regions"`
	WrittenAt time.Time `json:"written_at"`
}

type snapshotRegion struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Owner       uuid.UUID      `json:"owner"`
	World       string         `json:"world"`
	Min         model.BlockPos `json:"min"`
	Max         model.BlockPos `json:"max"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

// WriteSnapshot writes regions as zstd-compressed JSON lines: a header,
// then one region per line.
func WriteSnapshot(w io.Writer, regions []*region.Region) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 64*1024)
	je := json.NewEncoder(bw)

	header := SnapshotHeader{Version: SnapshotVersion, Regions: len(regions), WrittenAt: time.Now().UTC()}
	if err := je.Encode(header); err != nil {
		enc.Close()
		return fmt.Errorf("writing snapshot header: %w", err)
	}
	for _, r := range regions {
		vol := r.Volume()
		line := snapshotRegion{
			ID:          r.ID(),
			Name:        r.Name(),
			Owner:       r.Creator(),
			World:       r.World(),
			Min:         vol.Min,
			Max:         vol.Max,
			Description: r.Description(),
			CreatedAt:   r.CreatedAt(),
		}
		if err := je.Encode(line); err != nil {
			enc.Close()
			return fmt.Errorf("writing region %s: %w", r.Name(), err)
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	return enc.Close()
}

// ReadSnapshot reads a stream written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (SnapshotHeader, []*region.Region, error) {
	var header SnapshotHeader

	dec, err := zstd.NewReader(r)
	if err != nil {
		return header, nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 64*1024))
	if err := jd.Decode(&header); err != nil {
		return header, nil, fmt.Errorf("%w: header: %v", ErrBadSnapshot, err)
	}
	if header.Version != SnapshotVersion {
		return header, nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, header.Version)
	}

	regions := make([]*region.Region, 0, header.Regions)
	for {
		var line snapshotRegion
		err := jd.Decode(&line)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, nil, fmt.Errorf("%w: region %d: %v", ErrBadSnapshot, len(regions)+1, err)
		}
		if line.ID == uuid.Nil || line.Name == "" {
			return header, nil, fmt.Errorf("%w: region %d has no id or name", ErrBadSnapshot, len(regions)+1)
		}
		vol := region.NewVolume(line.Min, line.Max)
		regions = append(regions, region.Restore(line.ID, line.Name, line.Owner, line.World, vol, line.Description, line.CreatedAt))
	}

	if len(regions) != header.Regions {
		return header, nil, fmt.Errorf("%w: header says %d regions, read %d", ErrBadSnapshot, header.Regions, len(regions))
	}
	return header, regions, nil
}

// ImportRegions saves regions into p. Regions whose name is taken by a
// different region are skipped and returned.
func ImportRegions(ctx context.Context, p region.Persister, regions []*region.Region) (saved int, skipped []string, err error) {
	for _, r := range regions {
		if err := p.Save(ctx, r.Snapshot()); err != nil {
			if errors.Is(err, region.ErrAlreadyExists) {
				skipped = append(skipped, r.Name())
				continue
			}
			return saved, skipped, fmt.Errorf("importing region %s: %w", r.Name(), err)
		}
		saved++
	}
	return saved, skipped, nil
}
