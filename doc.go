// Package rendezvous provides a dynamic barrier-rendezvous primitive: an
// arbitrarily varying set of concurrent activities meet repeatedly at a
// shared point, exchange data, compute a reduction over that data, and
// leave, while new activities join and old ones depart without quiescing
// the group. It implements a dynamic variant of the barrier from Leslie
// Lamport's "Implementing Dataflow With Threads", Distributed Computing 21,
// 3 (2008), 163-181, extended with join/leave while the rendezvous is live.
//
// # Architecture
//
// A [Rendezvous] owns three intrusive lock-free lists of membership handles
// ([Place]): waiting (joined, not yet admitted), active (participating in
// meetings), and removing (departing). The head of active is the master,
// the one participant that performs maintenance: draining waiting into
// active, and removing leavers out of active. Each meeting ([Attend]) runs
// three successive barrier phases over a wrap-around sync counter: phase A
// makes membership changes visible, phase B ratifies them before any data
// is read, and phase C prevents any participant from returning while a peer
// still reads its data.
//
// # Thread Safety
//
// The design is lock-free; no mutex is held across any operation. A
// Rendezvous may be shared freely. A Place belongs to a single activity:
// its methods must not be called concurrently with each other. Every spin
// of a Place is routed through its configurable [BusyWaitHandler] (Close
// spins with [DefaultBusyWaitHandler]), and every compare-and-swap on list
// pointers goes through a configurable [CAS] primitive; the remaining
// shared writes use sync/atomic stores.
//
// # Lifecycle
//
//	r, _ := rendezvous.New[int]()
//	p, _ := r.Join()        // publishes the place; admission is deferred
//	... meetings via rendezvous.Attend(p, ...) or p.Meet(...) ...
//	p.Leave()               // blocks until cleanly detached
//	r.Close()               // blocks until all places have left
//
// There are no timeouts and no cancellation: an activity that abandons its
// Place without Leave leaves its peers spinning forever. Unwind places on
// all paths.
//
// # Usage
//
//	r, err := rendezvous.New[int]()
//	if err != nil {
//		log.Fatal(err)
//	}
//	var wg, ready sync.WaitGroup
//	ready.Add(3)
//	for i := 1; i <= 3; i++ {
//		i := i
//		wg.Add(1)
//		go func() {
//			defer wg.Done()
//			p, err := r.Join()
//			if err != nil {
//				panic(err)
//			}
//			defer p.Leave()
//			// all three join before any attends, so the first meeting
//			// includes everyone
//			ready.Done()
//			ready.Wait()
//			data := i
//			sum := p.Meet(func(int) int { return 0 }, rendezvous.SumFold[int](), &data)
//			fmt.Println(sum) // 6, on every participant
//		}()
//	}
//	wg.Wait()
//	r.Close()
package rendezvous
