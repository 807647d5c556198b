package credentials

import "context"

// stagedWriter records writes so a backend without real transactions can
// apply them in one step after fn succeeds.
type stagedWriter struct {
	ops []stagedOp
}

type stagedOp struct {
	key    string
	value  []byte
	delete bool
}

func (w *stagedWriter) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	w.ops = append(w.ops, stagedOp{key: key, value: v})
	return nil
}

func (w *stagedWriter) Delete(_ context.Context, key string) error {
	w.ops = append(w.ops, stagedOp{key: key, delete: true})
	return nil
}
