package domain

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/desim-go/desim"
)

// TandemNetwork wires a Generator into a chain of Queue→Server stages — the
// canonical "hello world" composition for this engine (an M/M/1 queue is
// the one-stage case; a tandem queue chains several). Each stage is an
// independent sandbox attached as a child of Root, so the whole network
// shares one logical clock while each component still owns a locally
// bounded future-event list.
type TandemNetwork struct {
	Root      *desim.Sandbox
	Generator *Generator
	Queues    []*Queue[int]
	Servers   []*Server[int]

	// completions and sumHoursInSystem record, for each load that exits the
	// final stage, its sojourn time (exit clock minus the arrival clock kept
	// in arrivalTimes). The mean is their plain average over completed loads,
	// not a Little's-law estimate from an hour-counter.
	completions      int
	sumHoursInSystem float64
	arrivalTimes     map[int]time.Duration
	nextLoadID       int
}

// StageSpec configures one Queue→Server stage of a TandemNetwork.
type StageSpec struct {
	QueueCapacity  int
	ServerCapacity int
	ServiceTime    func(rng *rand.Rand, load int) time.Duration
}

// NewTandemNetwork builds a network with one Generator feeding len(stages)
// Queue→Server pairs in series. arrivalTime samples the generator's
// inter-arrival gaps.
func NewTandemNetwork(id string, seed int64, arrivalTime func(rng *rand.Rand) time.Duration, stages []StageSpec) *TandemNetwork {
	net := &TandemNetwork{
		Root:         desim.NewSandbox(id, seed),
		arrivalTimes: make(map[int]time.Duration),
	}

	net.Queues = make([]*Queue[int], len(stages))
	net.Servers = make([]*Server[int], len(stages))

	for i, stage := range stages {
		stageIdx := i
		queue := NewQueue[int](stageName(id, "queue", i), seed+int64(i)*2+1, stage.QueueCapacity, func(load int) {
			net.Servers[stageIdx].RqstStart(load)
		})
		server := NewServer[int](stageName(id, "server", i), seed+int64(i)*2+2, stage.ServerCapacity, stage.ServiceTime,
			func(load int) { net.Queues[stageIdx].Dequeue(load) },
			func(load int) { net.onStageComplete(stageIdx, load) },
		)
		net.Root.AddChild(queue.Sandbox)
		net.Root.AddChild(server.Sandbox)
		net.Queues[i] = queue
		net.Servers[i] = server
	}

	net.Generator = NewGenerator(stageName(id, "generator", -1), seed, arrivalTime, func(count int) {
		net.nextLoadID++
		load := net.nextLoadID
		net.arrivalTimes[load] = net.Root.ClockTime()
		net.Queues[0].RqstEnqueue(load)
	})
	net.Root.AddChild(net.Generator.Sandbox)

	return net
}

// onStageComplete drains a finished load from stage i's server: if another
// stage follows, the load is handed to its queue; otherwise the network
// records its completion and total sojourn time. Either way, Depart is
// called immediately so the server's capacity is freed right away — this
// reference network has no separate downstream buffering delay.
func (net *TandemNetwork) onStageComplete(stageIdx int, load int) {
	if stageIdx+1 < len(net.Queues) {
		net.Queues[stageIdx+1].RqstEnqueue(load)
	} else {
		arrival, ok := net.arrivalTimes[load]
		if ok {
			net.completions++
			net.sumHoursInSystem += (net.Root.ClockTime() - arrival).Hours()
			delete(net.arrivalTimes, load)
		}
	}
	net.Servers[stageIdx].Depart(load)
}

// Completions returns the number of loads that have exited the final
// stage.
func (net *TandemNetwork) Completions() int { return net.completions }

// AverageHoursInSystem returns the mean sojourn time, in hours, across
// every load that has completed the final stage. Returns 0 if none have.
func (net *TandemNetwork) AverageHoursInSystem() float64 {
	if net.completions == 0 {
		return 0
	}
	return net.sumHoursInSystem / float64(net.completions)
}

func stageName(networkID, role string, idx int) string {
	if idx < 0 {
		return networkID + "." + role
	}
	return networkID + "." + role + "." + strconv.Itoa(idx)
}
