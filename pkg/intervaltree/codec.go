package intervaltree

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
	"github.com/Sumatoshi-tech/intervaltree/pkg/safeconv"
)

// ErrCorruptSnapshot is returned when a snapshot cannot be decoded or its
// stored node state disagrees with the rebuilt tree.
var ErrCorruptSnapshot = errors.New("corrupt tree snapshot")

// Snapshot layout:
//
//	header  magic "IVTR" | version | header flags
//	body    (LZ4 frame when compressed)
//	        kind | config flags | comparator | filter | factory
//	        interval count | has root | root node
//	node    key | start | end | max | level | height | [collection]
//	        has left | [left node] | has right | [right node]
const (
	snapshotMagic   = "IVTR"
	snapshotVersion = 1
	headerLength    = len(snapshotMagic) + 2
	maxNameLength   = 256
)

// Header flags.
const (
	headerCompressed byte = 1 << iota
)

// Configuration flags.
const (
	configAutoBalancing byte = 1 << iota
	configUsesPersistor
	configWriteCollections
	configCollectionsIncluded
)

// SaveOption configures Tree.Save.
type SaveOption func(*saveOptions)

type saveOptions struct {
	compress bool
}

// WithCompression wraps the snapshot body in an LZ4 frame.
func WithCompression(on bool) SaveOption {
	return func(o *saveOptions) { o.compress = on }
}

// Save writes the configuration and the node graph to w in pre-order.
// Collections are included when the configuration asks for it and always
// when they do not live in a persistor.
func (t *Tree) Save(w io.Writer, opts ...SaveOption) error {
	var options saveOptions

	for _, opt := range opts {
		opt(&options)
	}

	header := append([]byte(snapshotMagic), snapshotVersion, 0)
	if options.compress {
		header[len(header)-1] |= headerCompressed
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	body := w

	var zw *lz4.Writer

	if options.compress {
		zw = lz4.NewWriter(w)
		body = zw
	}

	enc := &encoder{
		w:           bufio.NewWriter(body),
		collections: t.cfg.writeCollections || !t.cfg.UsesPersistor(),
	}

	enc.config(t.cfg)
	enc.buf = binary.AppendUvarint(enc.buf, safeconv.MustIntToUint64(t.size))

	if err := enc.child(t.root); err != nil {
		return err
	}

	enc.flush()

	if enc.err == nil {
		enc.err = enc.w.Flush()
	}

	if zw != nil && enc.err == nil {
		enc.err = zw.Close()
	}

	if enc.err != nil {
		return fmt.Errorf("write snapshot: %w", enc.err)
	}

	return nil
}

type encoder struct {
	w           *bufio.Writer
	buf         []byte
	collections bool
	err         error
}

func (e *encoder) flush() {
	if e.err == nil && len(e.buf) > 0 {
		_, e.err = e.w.Write(e.buf)
	}

	e.buf = e.buf[:0]
}

func (e *encoder) config(cfg Configuration) {
	var flags byte

	if cfg.autoBalancing {
		flags |= configAutoBalancing
	}

	if cfg.UsesPersistor() {
		flags |= configUsesPersistor
	}

	if cfg.writeCollections {
		flags |= configWriteCollections
	}

	if e.collections {
		flags |= configCollectionsIncluded
	}

	e.buf = append(e.buf, byte(cfg.kind), flags)
	e.buf = appendString(e.buf, cfg.comparator.Name())
	e.buf = appendString(e.buf, cfg.filter.Name())
	e.buf = appendString(e.buf, cfg.factory.Name())
}

// child writes the presence byte for n and, when present, its block.
func (e *encoder) child(n *Node) error {
	if n == nil {
		e.buf = append(e.buf, 0)

		return nil
	}

	e.buf = append(e.buf, 1)

	return e.node(n)
}

func (e *encoder) node(n *Node) error {
	e.buf = appendString(e.buf, n.key)
	e.buf = interval.AppendValue(e.buf, n.start)
	e.buf = interval.AppendValue(e.buf, n.end)
	e.buf = interval.AppendValue(e.buf, n.max)
	e.buf = binary.AppendUvarint(e.buf, safeconv.MustIntToUint64(n.level))
	e.buf = binary.AppendUvarint(e.buf, safeconv.MustIntToUint64(n.height))

	if e.collections {
		c, err := n.Collection()
		if err != nil {
			return err
		}

		e.buf = interval.AppendList(e.buf, c.Values())
	}

	e.flush()

	if err := e.child(n.left); err != nil {
		return err
	}

	return e.child(n.right)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))

	return append(buf, s...)
}

// decode reads a snapshot. A non-nil factory replaces the one named in the
// snapshot.
func decode(r io.Reader, factory collection.Factory) (*Tree, error) {
	br := bufio.NewReader(r)

	header := make([]byte, headerLength)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorruptSnapshot, err)
	}

	if string(header[:len(snapshotMagic)]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptSnapshot, header[:len(snapshotMagic)])
	}

	if version := header[len(snapshotMagic)]; version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, version)
	}

	var body interval.Reader = br
	if header[len(snapshotMagic)+1]&headerCompressed != 0 {
		body = bufio.NewReader(lz4.NewReader(br))
	}

	d := &decoder{r: body}

	cfg, err := d.config(factory)
	if err != nil {
		return nil, err
	}

	t := newTree(cfg)

	size, err := d.count()
	if err != nil {
		return nil, err
	}

	root, err := d.child(t, 0)
	if err != nil {
		return nil, err
	}

	t.root, t.size = root, size

	if err := d.finish(t); err != nil {
		return nil, err
	}

	return t, nil
}

type decoder struct {
	r           interval.Reader
	collections bool
	intervals   int
}

func (d *decoder) config(override collection.Factory) (Configuration, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return Configuration{}, corrupt("config", err)
	}

	flags, err := d.r.ReadByte()
	if err != nil {
		return Configuration{}, corrupt("config", err)
	}

	names := make([]string, 3)
	for i := range names {
		if names[i], err = d.string(maxNameLength); err != nil {
			return Configuration{}, err
		}
	}

	cfg := Configuration{
		kind:             numeric.Kind(kind),
		autoBalancing:    flags&configAutoBalancing != 0,
		writeCollections: flags&configWriteCollections != 0,
	}
	d.collections = flags&configCollectionsIncluded != 0

	if cfg.comparator, err = compare.Lookup(names[0]); err != nil {
		return Configuration{}, fmt.Errorf("%w: %w", ErrIllegalConfiguration, err)
	}

	if cfg.filter, err = interval.LookupFilter(names[1]); err != nil {
		return Configuration{}, fmt.Errorf("%w: %w", ErrIllegalConfiguration, err)
	}

	switch {
	case override != nil:
		cfg.factory = override
	case flags&configUsesPersistor != 0:
		return Configuration{}, fmt.Errorf("%w: snapshot collections live in a persistor, supply factory %s",
			ErrIllegalConfiguration, names[2])
	default:
		if cfg.factory, err = collection.LookupFactory(names[2]); err != nil {
			return Configuration{}, fmt.Errorf("%w: %w", ErrIllegalConfiguration, err)
		}
	}

	if !d.collections && cfg.factory.Observer() == nil {
		return Configuration{}, fmt.Errorf("%w: snapshot has no collections and factory %s cannot load them",
			ErrIllegalConfiguration, cfg.factory.Name())
	}

	return cfg, cfg.validate()
}

func (d *decoder) child(t *Tree, level int) (*Node, error) {
	present, err := d.r.ReadByte()
	if err != nil {
		return nil, corrupt("child flag", err)
	}

	switch present {
	case 0:
		return nil, nil
	case 1:
		return d.node(t, level)
	default:
		return nil, fmt.Errorf("%w: child flag %d", ErrCorruptSnapshot, present)
	}
}

func (d *decoder) node(t *Tree, level int) (*Node, error) {
	key, err := d.string(2 * maxNameLength)
	if err != nil {
		return nil, err
	}

	var values [3]numeric.Value
	for i := range values {
		if values[i], err = interval.ReadValue(d.r); err != nil {
			return nil, fmt.Errorf("%w: node %s: %w", ErrCorruptSnapshot, key, err)
		}
	}

	storedLevel, err := d.count()
	if err != nil {
		return nil, err
	}

	storedHeight, err := d.count()
	if err != nil {
		return nil, err
	}

	n := newNode(t, values[0], values[1], key)
	n.level = level

	if err := d.checkRange(t, n); err != nil {
		return nil, err
	}

	if storedLevel != level {
		return nil, fmt.Errorf("%w: node %s: level %d, want %d", ErrCorruptSnapshot, key, storedLevel, level)
	}

	if d.collections {
		if err := d.collection(t, n); err != nil {
			return nil, err
		}
	}

	for _, s := range []side{sideLeft, sideRight} {
		c, err := d.child(t, level+1)
		if err != nil {
			return nil, err
		}

		n.link(s, c)
	}

	n.update()

	if n.height != storedHeight || t.cfg.comparator.Compare(n.max, values[2]) != 0 {
		return nil, fmt.Errorf("%w: node %s: stored height %d max %s, rebuilt %d %s",
			ErrCorruptSnapshot, key, storedHeight, values[2], n.height, n.max)
	}

	return n, nil
}

func (d *decoder) checkRange(t *Tree, n *Node) error {
	if n.start.IsNull() || n.end.IsNull() {
		return fmt.Errorf("%w: node %s: null bound", ErrCorruptSnapshot, n.key)
	}

	if t.cfg.kind.Valid() && (n.start.Kind() != t.cfg.kind || n.end.Kind() != t.cfg.kind) {
		return fmt.Errorf("%w: node %s: kind %s in tree of %s", ErrCorruptSnapshot, n.key, n.start.Kind(), t.cfg.kind)
	}

	if err := t.cfg.comparator.Check(n.start.Kind(), n.end.Kind()); err != nil {
		return fmt.Errorf("%w: node %s: %w", ErrCorruptSnapshot, n.key, err)
	}

	if want := "[" + n.start.String() + "," + n.end.String() + "]"; want != n.key {
		return fmt.Errorf("%w: node key %s, want %s", ErrCorruptSnapshot, n.key, want)
	}

	return nil
}

func (d *decoder) collection(t *Tree, n *Node) error {
	ivs, err := interval.ReadList(d.r)
	if err != nil {
		return fmt.Errorf("%w: node %s: %w", ErrCorruptSnapshot, n.key, err)
	}

	if len(ivs) == 0 {
		return fmt.Errorf("%w: node %s: empty collection", ErrCorruptSnapshot, n.key)
	}

	for _, iv := range ivs {
		if iv.UniqueIdentifier() != n.key {
			return fmt.Errorf("%w: interval %s stored under %s", ErrCorruptSnapshot, iv, n.key)
		}
	}

	c := t.cfg.factory.New()
	n.hold(c)

	if obs := t.cfg.factory.Observer(); obs != nil {
		collection.Observe(c, n.key, obs).AddAll(ivs...)
	} else {
		c.AddAll(ivs...)
	}

	d.intervals += c.Len()

	return nil
}

// finish checks the decoded graph as a whole: range order and, when the
// collections were included, the interval count.
func (d *decoder) finish(t *Tree) error {
	var prev *Node

	for n := range t.Nodes() {
		if prev != nil && !ordered(t.cfg.comparator, prev, n) {
			return fmt.Errorf("%w: node %s after %s", ErrCorruptSnapshot, n.key, prev.key)
		}

		prev = n
	}

	if d.collections && d.intervals != t.size {
		return fmt.Errorf("%w: %d intervals, header says %d", ErrCorruptSnapshot, d.intervals, t.size)
	}

	return nil
}

func (d *decoder) count() (int, error) {
	v, err := binary.ReadUvarint(d.r)
	if err != nil {
		return 0, corrupt("count", err)
	}

	n, ok := safeconv.Uint64ToInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: count %d overflows", ErrCorruptSnapshot, v)
	}

	return n, nil
}

func (d *decoder) string(limit int) (string, error) {
	size, err := d.count()
	if err != nil {
		return "", err
	}

	if size > limit {
		return "", fmt.Errorf("%w: string of %d bytes exceeds %d", ErrCorruptSnapshot, size, limit)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", corrupt("string", err)
	}

	return string(buf), nil
}

func corrupt(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, what, err)
}
