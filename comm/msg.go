package comm

// MsgMeta contains the meta data that is attached to every message. Src and
// Dst are ranks of the whole run, not of the sub-group the message was sent
// in.
type MsgMeta struct {
	ID       string
	Context  uint64
	Src, Dst int
	Tag      int
}

// A Msg is a buffer in flight between two ranks.
type Msg struct {
	MsgMeta

	Data []float64
}

// Meta returns the meta data of the message.
func (m *Msg) Meta() *MsgMeta {
	return &m.MsgMeta
}

// TrafficBytes returns the payload size in bytes.
func (m *Msg) TrafficBytes() int {
	return 8 * len(m.Data)
}

// MsgBuilder can build messages. The payload is copied, so the sender may
// reuse its buffer as soon as Build returns.
type MsgBuilder struct {
	id       string
	context  uint64
	src, dst int
	tag      int
	data     []float64
}

// WithID sets the ID of the message.
func (b MsgBuilder) WithID(id string) MsgBuilder {
	b.id = id
	return b
}

// WithContext sets the communicator context the message belongs to.
func (b MsgBuilder) WithContext(context uint64) MsgBuilder {
	b.context = context
	return b
}

// WithSrc sets the sending rank.
func (b MsgBuilder) WithSrc(src int) MsgBuilder {
	b.src = src
	return b
}

// WithDst sets the receiving rank.
func (b MsgBuilder) WithDst(dst int) MsgBuilder {
	b.dst = dst
	return b
}

// WithTag sets the tag.
func (b MsgBuilder) WithTag(tag int) MsgBuilder {
	b.tag = tag
	return b
}

// WithData sets the payload.
func (b MsgBuilder) WithData(data []float64) MsgBuilder {
	b.data = data
	return b
}

// Build creates the message.
func (b MsgBuilder) Build() *Msg {
	return &Msg{
		MsgMeta: MsgMeta{
			ID:      b.id,
			Context: b.context,
			Src:     b.src,
			Dst:     b.dst,
			Tag:     b.tag,
		},
		Data: append([]float64(nil), b.data...),
	}
}
