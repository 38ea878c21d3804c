package engine

import (
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trdthg/logkv/internal/codec"
	"github.com/trdthg/logkv/internal/index"
	"github.com/trdthg/logkv/pkg/errors"
	"github.com/trdthg/logkv/pkg/filesys"
	"github.com/trdthg/logkv/pkg/posio"
	"github.com/trdthg/logkv/pkg/segment"
)

// record is one decoded command plus the position it occupies, produced
// while replaying a single segment.
type record struct {
	cmd   codec.Command
	start int64
	len   int64
}

// replay rebuilds idx from every existing segment in dataDir and returns
// the generation the writer should start appending to (one past the
// highest existing generation, or 1 if the directory is empty) along
// with the number of stale bytes already present across those segments.
//
// Segments decode concurrently — decoding is pure CPU and I/O work with
// no shared state — but the resulting records are applied to idx in
// ascending generation order on the calling goroutine, since a later
// generation's Set for a key must always win over an earlier one.
func replay(dataDir string, idx *index.Index, log *zap.SugaredLogger) (currentGen uint64, uncompacted uint64, err error) {
	if ok, err := filesys.Exists(dataDir); err != nil {
		return 0, 0, errors.ClassifyDirectoryCreationError(err, dataDir)
	} else if !ok {
		if err := filesys.CreateDir(dataDir, 0755, true); err != nil {
			return 0, 0, errors.ClassifyDirectoryCreationError(err, dataDir)
		}
	}

	gens, err := segment.List(dataDir)
	if err != nil {
		return 0, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list segments").WithPath(dataDir)
	}

	perGen := make([][]record, len(gens))

	g := new(errgroup.Group)
	for i, gen := range gens {
		i, gen := i, gen
		g.Go(func() error {
			recs, err := decodeSegment(dataDir, gen)
			if err != nil {
				return err
			}
			perGen[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	for i, gen := range gens {
		for _, rec := range perGen[i] {
			switch rec.cmd.Type {
			case codec.Set:
				old, hadOld := idx.Insert(rec.cmd.Key, index.Pointer{Gen: gen, Pos: rec.start, Len: rec.len})
				if hadOld {
					uncompacted += uint64(old.Len)
				}
			case codec.Remove:
				if old, hadOld := idx.Remove(rec.cmd.Key); hadOld {
					uncompacted += uint64(old.Len)
				}
				uncompacted += uint64(rec.len)
			}
		}
	}

	if len(gens) == 0 {
		currentGen = 1
	} else {
		currentGen = gens[len(gens)-1] + 1
	}

	log.Infow("replayed segments", "segments", len(gens), "keys", idx.Len(), "uncompacted", uncompacted)
	return currentGen, uncompacted, nil
}

// decodeSegment reads every command out of a single segment file in
// order, returning each one's position for the caller to fold into the
// index.
func decodeSegment(dataDir string, gen uint64) ([]record, error) {
	f, err := segment.OpenRead(dataDir, gen)
	if err != nil {
		return nil, errors.ClassifySegmentOpenError(err, gen, segment.Path(dataDir, gen))
	}
	pr := posio.NewReader(f, 0)
	defer pr.Close()

	dec := codec.NewReader(pr, 0)
	var recs []record
	for {
		cmd, start, length, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ClassifyCodecError(err, gen, start, true)
		}
		recs = append(recs, record{cmd: cmd, start: start, len: length})
	}
	return recs, nil
}
