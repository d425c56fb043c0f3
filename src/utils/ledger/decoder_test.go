package ledger

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testProgramId = "7h3gXfBfYFueFVLYyfL5Qo1QGsf4GQUfW96FKVgnUsJS"

type DecoderTestSuite struct {
	suite.Suite
	decoder *Decoder
}

func (s *DecoderTestSuite) SetupSuite() {
	s.decoder = NewDecoder(testProgramId)
}

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}

type payloadBuilder struct {
	buf bytes.Buffer
}

func payload(discriminator byte) *payloadBuilder {
	b := new(payloadBuilder)
	b.buf.WriteByte(discriminator)
	return b
}

func (b *payloadBuilder) Fixed32(seed byte) *payloadBuilder {
	var field [32]byte
	for i := range field {
		field[i] = seed
	}
	b.buf.Write(field[:])
	return b
}

func (b *payloadBuilder) Byte(v byte) *payloadBuilder {
	b.buf.WriteByte(v)
	return b
}

func (b *payloadBuilder) Bool(v bool) *payloadBuilder {
	if v {
		return b.Byte(1)
	}
	return b.Byte(0)
}

func (b *payloadBuilder) Uint32(v uint32) *payloadBuilder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *payloadBuilder) Uint64(v uint64) *payloadBuilder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *payloadBuilder) Int64(v int64) *payloadBuilder {
	return b.Uint64(uint64(v))
}

func (b *payloadBuilder) String(v string) *payloadBuilder {
	b.Uint32(uint32(len(v)))
	b.buf.WriteString(v)
	return b
}

func (b *payloadBuilder) Bytes() []byte {
	return b.buf.Bytes()
}

func hex32(seed byte) string {
	var field [32]byte
	for i := range field {
		field[i] = seed
	}
	return hex.EncodeToString(field[:])
}

func notification(instructions ...Instruction) *TransactionNotification {
	return &TransactionNotification{
		Signature:    "test-signature",
		Slot:         4321,
		BlockTime:    1700000000,
		Instructions: instructions,
	}
}

func (s *DecoderTestSuite) TestMarketCreated() {
	data := payload(DiscriminatorMarketCreated).
		Fixed32(0xAA).
		Fixed32(0xBB).
		String("Will it rain tomorrow?").
		Int64(1700000100).
		Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: data}))
	require.Empty(s.T(), errs)
	require.Len(s.T(), events, 1)

	event, ok := events[0].(*MarketCreated)
	require.True(s.T(), ok)
	require.Equal(s.T(), hex32(0xAA), event.MarketId)
	require.Equal(s.T(), hex32(0xBB), event.Creator)
	require.Equal(s.T(), "Will it rain tomorrow?", event.Question)
	require.EqualValues(s.T(), 1700000100, event.CreatedAt)
	require.Equal(s.T(), EventTypeMarketCreated, event.Type())
	require.Equal(s.T(), hex32(0xAA), event.Market())
}

func (s *DecoderTestSuite) TestTradeExecuted() {
	data := payload(DiscriminatorTradeExecuted).
		Fixed32(0x01).
		Fixed32(0x02).
		Bool(true).
		Bool(true).
		Uint64(150).
		Uint64(75000).
		Uint64(1150).
		Uint64(900).
		Uint64(500000).
		Int64(1700000200).
		Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: data}))
	require.Empty(s.T(), errs)
	require.Len(s.T(), events, 1)

	event, ok := events[0].(*TradeExecuted)
	require.True(s.T(), ok)
	require.True(s.T(), event.Outcome)
	require.True(s.T(), event.IsBuy)
	require.EqualValues(s.T(), 150, event.Shares)
	require.EqualValues(s.T(), 75000, event.Amount)
	require.EqualValues(s.T(), 1150, event.NewSharesYes)
	require.EqualValues(s.T(), 900, event.NewSharesNo)
	require.EqualValues(s.T(), 500000, event.NewLiquidity)
}

func (s *DecoderTestSuite) TestVoteRecorded() {
	data := payload(DiscriminatorVoteRecorded).
		Fixed32(0x03).
		Fixed32(0x04).
		Byte(VoteKindDispute).
		Bool(false).
		Int64(1700000300).
		Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: data}))
	require.Empty(s.T(), errs)
	require.Len(s.T(), events, 1)

	event, ok := events[0].(*VoteRecorded)
	require.True(s.T(), ok)
	require.Equal(s.T(), VoteKindDispute, event.Kind)
	require.False(s.T(), event.Choice)
	require.Equal(s.T(), hex32(0x04), event.Voter)
}

func (s *DecoderTestSuite) TestDisputeResolved() {
	data := payload(DiscriminatorDisputeResolved).
		Fixed32(0x05).
		Uint32(70).
		Uint32(30).
		Bool(true).
		Bool(false).
		Int64(1700000400).
		Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: data}))
	require.Empty(s.T(), errs)
	require.Len(s.T(), events, 1)

	event, ok := events[0].(*DisputeResolved)
	require.True(s.T(), ok)
	require.EqualValues(s.T(), 70, event.Agrees)
	require.EqualValues(s.T(), 30, event.Disagrees)
	require.True(s.T(), event.Succeeded)
	require.False(s.T(), event.FinalOutcome)
}

func (s *DecoderTestSuite) TestSkipsOtherPrograms() {
	data := payload(DiscriminatorMarketCreated).
		Fixed32(0x01).
		Fixed32(0x02).
		String("q").
		Int64(1).
		Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: "SomeOtherProgram", Data: data}))
	require.Empty(s.T(), errs)
	require.Empty(s.T(), events)
}

func (s *DecoderTestSuite) TestSkipsUnknownDiscriminator() {
	data := payload(200).Uint64(1234).Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: data}))
	require.Empty(s.T(), errs)
	require.Empty(s.T(), events)
}

func (s *DecoderTestSuite) TestEmptyPayload() {
	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: []byte{}}))
	require.Len(s.T(), errs, 1)
	require.ErrorIs(s.T(), errs[0], ErrEmptyPayload)
	require.Empty(s.T(), events)
}

func (s *DecoderTestSuite) TestTruncatedPayloadFailsSingleInstruction() {
	truncated := payload(DiscriminatorWinningsClaimed).
		Fixed32(0x06).
		Bytes()
	valid := payload(DiscriminatorWinningsClaimed).
		Fixed32(0x07).
		Fixed32(0x08).
		Uint64(999).
		Int64(1700000500).
		Bytes()

	events, errs := s.decoder.Decode(notification(
		Instruction{ProgramId: testProgramId, Data: truncated},
		Instruction{ProgramId: testProgramId, Data: valid},
	))
	require.Len(s.T(), errs, 1)
	require.ErrorIs(s.T(), errs[0], ErrPayloadTooShort)
	require.Len(s.T(), events, 1)

	event, ok := events[0].(*WinningsClaimed)
	require.True(s.T(), ok)
	require.Equal(s.T(), hex32(0x07), event.MarketId)
	require.EqualValues(s.T(), 999, event.Amount)
}

func (s *DecoderTestSuite) TestLengthPrefixAtUint32Max() {
	data := payload(DiscriminatorMarketCreated).
		Fixed32(0x01).
		Fixed32(0x02).
		Uint32(math.MaxUint32).
		Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: data}))
	require.Len(s.T(), errs, 1)
	require.ErrorIs(s.T(), errs[0], ErrPayloadTooShort)
	require.Empty(s.T(), events)
}

func (s *DecoderTestSuite) TestOversizedLengthPrefix() {
	data := payload(DiscriminatorMarketCreated).
		Fixed32(0x01).
		Fixed32(0x02).
		Uint32(1 << 20). // declared length way past the payload end
		Bytes()

	events, errs := s.decoder.Decode(notification(Instruction{ProgramId: testProgramId, Data: data}))
	require.Len(s.T(), errs, 1)
	require.ErrorIs(s.T(), errs[0], ErrPayloadTooShort)
	require.Empty(s.T(), events)
}
