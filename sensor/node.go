// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sensor

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/log"

	"github.com/luxfi/resonance/coherence"
	"github.com/luxfi/resonance/phase"
)

const (
	// DefaultTarget is the gateway frequency, in Hz.
	DefaultTarget = 963.0

	// HeartRateVariability is reported by every reading.
	HeartRateVariability = 0.7

	UserHashLen     = 16
	LocationHashLen = 12
	SignatureLen    = 16

	// thetaScale converts a theta sample into an estimator input.
	thetaScale = 100
)

// Clock timestamps readings.
type Clock interface {
	Time() time.Time
}

// Activation is the result of driving a node's gateway.
type Activation struct {
	// Pineal is the reader's coherence when the gateway was driven.
	Pineal float64           `json:"pineal"`
	Result coherence.Result `json:"result"`
}

// Reading is one biofield capture.
type Reading struct {
	Timestamp            time.Time `json:"timestamp"`
	HeartRateVariability float64   `json:"heartRateVariability"`
	EmotionalResonance   float64   `json:"emotionalResonance"`
	StressLevel          float64   `json:"stressLevel"`
	LocationHash         string    `json:"locationHash"`
	UserHash             string    `json:"userHash"`
	Theta                float64   `json:"theta"`
	Signature            string    `json:"signature"`
}

// Node is one participant's sensor rig. It is safe for concurrent use.
type Node struct {
	userID    string
	userHash  string
	reader    *ThetaReader
	estimator *coherence.Estimator
	clock     Clock
	log       log.Logger

	mu             sync.Mutex
	emotion        distuv.Uniform
	stress         distuv.Uniform
	lastActivation float64
}

// NewNode returns a node for [userID]. The theta reader and the reading
// noise each get a stream seeded from [src].
func NewNode(
	userID string,
	src rand.Source,
	estimator *coherence.Estimator,
	clock Clock,
	logger log.Logger,
) *Node {
	n := &Node{
		userID:    userID,
		userHash:  shortHash(userID, UserHashLen),
		reader:    NewThetaReader(fork(src)),
		estimator: estimator,
		clock:     clock,
		log:       logger,
	}
	noise := fork(src)
	n.emotion = distuv.Uniform{Min: -1, Max: 1, Src: noise}
	n.stress = distuv.Uniform{Min: 0, Max: 0.5, Src: noise}
	return n
}

func (n *Node) UserID() string {
	return n.userID
}

func (n *Node) Reader() *ThetaReader {
	return n.reader
}

func (n *Node) UserHash() string {
	return n.userHash
}

// LastActivation returns the pineal coherence of the last activation.
func (n *Node) LastActivation() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.lastActivation
}

// ActivateGateway estimates the coherence between [target] and the reader's
// last theta sample.
func (n *Node) ActivateGateway(target float64) Activation {
	pineal := n.reader.PinealCoherence()
	theta := n.reader.Theta()
	res := n.estimator.Estimate(target, scaleTheta(theta), coherence.DefaultTrials)

	n.mu.Lock()
	n.lastActivation = pineal
	n.mu.Unlock()

	n.log.Debug("activated gateway",
		log.String("user", n.userHash),
		log.Stringer("pineal", percent(pineal)),
		log.Stringer("coherence", percent(res.Coherence)),
	)
	return Activation{
		Pineal: pineal,
		Result: res,
	}
}

// CaptureBiofield activates the gateway, takes a fresh theta sample and signs
// it with a single-shot measurement.
func (n *Node) CaptureBiofield(location string) Reading {
	n.ActivateGateway(DefaultTarget)
	theta := n.reader.Read()

	counts := n.estimator.Sample(phase.Encode(scaleTheta(theta)), 1)
	signature := coherence.Fingerprint(counts)[:SignatureLen]

	n.mu.Lock()
	emotion := n.emotion.Rand()
	stress := n.stress.Rand()
	n.mu.Unlock()

	return Reading{
		Timestamp:            n.clock.Time(),
		HeartRateVariability: HeartRateVariability,
		EmotionalResonance:   emotion,
		StressLevel:          stress,
		LocationHash:         shortHash(location, LocationHashLen),
		UserHash:             n.userHash,
		Theta:                theta,
		Signature:            signature,
	}
}

// scaleTheta truncates theta*100 to an integer input.
func scaleTheta(theta float64) float64 {
	return float64(int(theta * thetaScale))
}

func fork(src rand.Source) rand.Source {
	return rand.NewPCG(src.Uint64(), src.Uint64())
}

type percent float64

func (p percent) String() string {
	return fmt.Sprintf("%.1f%%", float64(p)*100)
}

func shortHash(s string, n int) string {
	return hex.EncodeToString(hash.ComputeHash256([]byte(s)))[:n]
}
