package core

// FeedSlot is the payload carried by the MPSC fan-in ring: a Slot rewrapped with the
// originating feed's identity and that feed's local sequence number, plus the arrival
// timestamp the forwarding step observed when it popped the slot from the feed's local
// SPSC ring. OriginID attributes each popped entry back to its feed; FeedSeq is the
// worker-local monotonic counter used to detect reordering or loss on a per-feed basis
// independent of the wire Message.Seq.
type FeedSlot struct {
	Slot      Slot
	OriginID  uint32
	FeedSeq   uint64
	ArrivalTS uint64
}
