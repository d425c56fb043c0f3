package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/0xBased-lang/zmart-syncer/src/utils/logger"
	"github.com/sirupsen/logrus"
)

var (
	ErrPayloadTooShort = errors.New("payload too short")
	ErrEmptyPayload    = errors.New("empty payload")
)

// Decoder turns raw transaction notifications into typed events. Stateless,
// safe for concurrent use.
type Decoder struct {
	programId string
	log       *logrus.Entry
}

func NewDecoder(programId string) (self *Decoder) {
	self = new(Decoder)
	self.programId = programId
	self.log = logger.NewSublogger("decoder")
	return
}

// Decode returns the events carried by instructions of the tracked program.
// A malformed payload fails only its own instruction, sibling instructions
// still get decoded. Unknown discriminators are skipped, the program may
// emit event shapes newer than this build.
func (self *Decoder) Decode(notification *TransactionNotification) (events []Event, errs []error) {
	for i := range notification.Instructions {
		instruction := &notification.Instructions[i]
		if instruction.ProgramId != self.programId {
			continue
		}

		event, err := self.decodeInstruction(instruction.Data)
		if err != nil {
			self.log.WithError(err).
				WithField("signature", notification.Signature).
				WithField("instruction", i).
				Warn("Failed to decode instruction")
			errs = append(errs, fmt.Errorf("instruction %d: %w", i, err))
			continue
		}
		if event == nil {
			// Unknown discriminator
			continue
		}

		events = append(events, event)
	}
	return
}

func (self *Decoder) decodeInstruction(data []byte) (event Event, err error) {
	if len(data) == 0 {
		err = ErrEmptyPayload
		return
	}

	r := newPayloadReader(data[1:])

	switch data[0] {
	case DiscriminatorMarketCreated:
		event = &MarketCreated{
			MarketId:  r.Hex32(),
			Creator:   r.Hex32(),
			Question:  r.String(),
			CreatedAt: r.Int64(),
		}
	case DiscriminatorTradeExecuted:
		event = &TradeExecuted{
			MarketId:     r.Hex32(),
			User:         r.Hex32(),
			Outcome:      r.Bool(),
			IsBuy:        r.Bool(),
			Shares:       r.Uint64(),
			Amount:       r.Uint64(),
			NewSharesYes: r.Uint64(),
			NewSharesNo:  r.Uint64(),
			NewLiquidity: r.Uint64(),
			Timestamp:    r.Int64(),
		}
	case DiscriminatorProposalApproved:
		event = &ProposalApproved{
			MarketId:  r.Hex32(),
			Likes:     r.Uint32(),
			Dislikes:  r.Uint32(),
			Timestamp: r.Int64(),
		}
	case DiscriminatorMarketResolved:
		event = &MarketResolved{
			MarketId:        r.Hex32(),
			Resolver:        r.Hex32(),
			ProposedOutcome: r.Bool(),
			Timestamp:       r.Int64(),
		}
	case DiscriminatorDisputeRaised:
		event = &DisputeRaised{
			MarketId:        r.Hex32(),
			Initiator:       r.Hex32(),
			DisputedOutcome: r.Bool(),
			Timestamp:       r.Int64(),
		}
	case DiscriminatorDisputeResolved:
		event = &DisputeResolved{
			MarketId:     r.Hex32(),
			Agrees:       r.Uint32(),
			Disagrees:    r.Uint32(),
			Succeeded:    r.Bool(),
			FinalOutcome: r.Bool(),
			Timestamp:    r.Int64(),
		}
	case DiscriminatorVoteRecorded:
		event = &VoteRecorded{
			MarketId:  r.Hex32(),
			Voter:     r.Hex32(),
			Kind:      r.Byte(),
			Choice:    r.Bool(),
			Timestamp: r.Int64(),
		}
	case DiscriminatorWinningsClaimed:
		event = &WinningsClaimed{
			MarketId:  r.Hex32(),
			User:      r.Hex32(),
			Amount:    r.Uint64(),
			Timestamp: r.Int64(),
		}
	default:
		self.log.WithField("discriminator", data[0]).Debug("Skipping unknown discriminator")
		return nil, nil
	}

	if r.Err != nil {
		return nil, r.Err
	}
	return
}

// payloadReader reads little-endian fields positionally. First failed read
// sets Err, later reads return zero values.
type payloadReader struct {
	buf []byte
	off int
	Err error
}

func newPayloadReader(buf []byte) *payloadReader {
	return &payloadReader{buf: buf}
}

func (self *payloadReader) take(n int) (out []byte) {
	if self.Err != nil {
		return
	}
	if self.off+n > len(self.buf) {
		self.Err = fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, self.off, len(self.buf)-self.off, ErrPayloadTooShort)
		return
	}
	out = self.buf[self.off : self.off+n]
	self.off += n
	return
}

func (self *payloadReader) Byte() byte {
	b := self.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (self *payloadReader) Bool() bool {
	return self.Byte() != 0
}

func (self *payloadReader) Uint32() uint32 {
	b := self.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (self *payloadReader) Uint64() uint64 {
	b := self.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (self *payloadReader) Int64() int64 {
	return int64(self.Uint64())
}

// Hex32 reads a fixed 32-byte field, hex encoded
func (self *payloadReader) Hex32() string {
	b := self.take(32)
	if b == nil {
		return ""
	}
	return hex.EncodeToString(b)
}

// String reads a 4-byte little-endian length prefix followed by that many
// bytes of UTF-8
func (self *payloadReader) String() string {
	n := self.Uint32()
	if self.Err != nil {
		return ""
	}
	// Checked in uint64, int(n) wraps negative on 32 bit platforms
	if uint64(n) > uint64(len(self.buf)-self.off) {
		self.Err = fmt.Errorf("declared length %d exceeds %d remaining bytes: %w", n, len(self.buf)-self.off, ErrPayloadTooShort)
		return ""
	}
	b := self.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}
