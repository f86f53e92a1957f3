// Copyright 2024 The dataviews Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package formats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
)

// boltKV reads one bucket of a bolt database into a map[string]string and
// writes such a map back, replacing the bucket.
//
// Arguments:
//   - bucket: the bucket name. Default "data".
type boltKV struct {
	bucket []byte
}

// boltTimeout bounds the wait for the file lock of a database that is open
// in another process.
const boltTimeout = time.Second

func newBolt(args op.Args) (op.Format, error) {
	bucket, err := args.String("bucket", "data")
	if err != nil {
		return nil, err
	}
	if bucket == "" {
		return nil, serrors.JoinNoStack(op.ErrInvalidArgument, nil,
			"arg", "bucket", "reason", "empty")
	}
	return boltKV{bucket: []byte(bucket)}, nil
}

func (b boltKV) Read(_ context.Context, inputs ...any) (any, error) {
	p, err := singlePath(inputs)
	if err != nil {
		return nil, err
	}
	d, err := bolt.Open(p, 0600, &bolt.Options{Timeout: boltTimeout, ReadOnly: true})
	if err != nil {
		return nil, serrors.Wrap("opening bolt database", err, "path", p)
	}
	defer d.Close()

	m := make(map[string]string)
	err = d.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return serrors.New("bucket not found", "bucket", string(b.bucket))
		}
		return bucket.ForEach(func(k, v []byte) error {
			m[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, serrors.Wrap("reading bolt database", err, "path", p)
	}
	return m, nil
}

func (b boltKV) Write(_ context.Context, data any, path string) error {
	entries, err := asStringMap(data)
	if err != nil {
		return err
	}
	d, err := bolt.Open(path, 0644, &bolt.Options{Timeout: boltTimeout})
	if err != nil {
		return serrors.Wrap("opening bolt database", err, "path", path)
	}
	defer d.Close()

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	err = d.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(b.bucket)
		if err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		bucket, err := tx.CreateBucket(b.bucket)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := bucket.Put([]byte(k), []byte(entries[k])); err != nil {
				return serrors.Wrap("storing entry", err, "key", k)
			}
		}
		return nil
	})
	if err != nil {
		return serrors.Wrap("writing bolt database", err, "path", path)
	}
	return nil
}

func asStringMap(data any) (map[string]string, error) {
	switch m := data.(type) {
	case map[string]string:
		return m, nil
	case map[string]any:
		r := make(map[string]string, len(m))
		for k, v := range m {
			switch t := v.(type) {
			case string:
				r[k] = t
			case []byte:
				r[k] = string(t)
			default:
				r[k] = fmt.Sprint(t)
			}
		}
		return r, nil
	default:
		return nil, dataError("map[string]string", data)
	}
}
