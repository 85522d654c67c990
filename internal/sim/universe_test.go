package sim_test

import (
	"context"
	"encoding/json"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/physics"
	"github.com/san-kum/chainsim/internal/sim"
)

func expectKinematics(u *sim.Universe) {
	GinkgoHelper()
	var parent dynamo.Vec2
	for i, b := range u.Bobs() {
		want := dynamo.Vec2{
			X: parent.X + b.Link.Length*math.Sin(b.Theta),
			Y: parent.Y + b.Link.Length*math.Cos(b.Theta),
		}
		Expect(b.Position).To(Equal(want), "bob %d", i)
		parent = b.Position
	}
}

var _ = Describe("Universe", func() {
	var u *sim.Universe

	BeforeEach(func() {
		u = sim.New()
		u.SetColorSource(&sim.FixedColors{Seq: []int{2}})
	})

	Describe("construction", func() {
		It("starts with two horizontal bobs at rest", func() {
			Expect(u.BobCount()).To(Equal(2))
			for i := 0; i < 2; i++ {
				b, ok := u.Bob(i)
				Expect(ok).To(BeTrue())
				Expect(b.Theta).To(Equal(math.Pi / 2))
				Expect(b.Omega).To(BeZero())
				Expect(b.Link.Length).To(Equal(100.0))
				Expect(b.Link.Mass).To(Equal(10.0))
			}
			first, _ := u.Bob(0)
			second, _ := u.Bob(1)
			Expect(first.Position).To(Equal(dynamo.V2(100, 0)))
			Expect(second.Position).To(Equal(dynamo.V2(200, 0)))
		})

		It("uses the default settings", func() {
			Expect(u.Gravity()).To(Equal(9.8))
			Expect(u.Speed()).To(Equal(0.05))
			Expect(u.Step()).To(Equal(0.1))
			Expect(u.Paused()).To(BeFalse())
			Expect(u.Method()).To(Equal(integrators.MethodEuler))
			Expect(u.MaxBobs()).To(Equal(sim.MaxBobsEuler))
		})
	})

	Describe("Advance", func() {
		It("skips a paused universe without mutation", func() {
			u.SetPaused(true)
			before := u.Snapshot()
			Expect(u.Advance(16)).To(Equal(sim.Skipped))
			Expect(u.Snapshot()).To(Equal(before))
		})

		It("skips an empty universe", func() {
			u.RemoveBob()
			u.RemoveBob()
			Expect(u.Advance(16)).To(Equal(sim.Skipped))
			Expect(u.Trails()).To(BeEmpty())
		})

		It("moves the chain and keeps positions consistent", func() {
			before := u.State()
			Expect(u.Advance(16)).To(Equal(sim.Applied))
			Expect(u.State()).NotTo(Equal(before))
			expectKinematics(u)
			Expect(u.Ticks()).To(Equal(1))
			Expect(u.Elapsed()).To(Equal(16 * u.Speed() * sim.StabilityScale))
		})

		It("keeps the kinematics invariant under RK4", func() {
			Expect(u.SetMethod(integrators.MethodRK4)).To(Succeed())
			for i := 0; i < 50; i++ {
				Expect(u.Advance(16)).To(Equal(sim.Applied))
			}
			expectKinematics(u)
		})

		It("leaves angles untouched on a zero step", func() {
			for _, m := range []integrators.Method{integrators.MethodEuler, integrators.MethodRK4} {
				u.Reset()
				Expect(u.SetMethod(m)).To(Succeed())
				u.UpdateBobTheta(1, 0.3)
				before := u.State()
				Expect(u.Advance(0)).To(Equal(sim.Applied))
				Expect(u.State()).To(Equal(before))
				Expect(u.Trails()[0]).To(HaveLen(1))
			}
		})

		It("records one trail point per bob with its own color", func() {
			Expect(u.Advance(16)).To(Equal(sim.Applied))
			trails := u.Trails()
			Expect(trails).To(HaveLen(2))
			for i, tr := range trails {
				b, _ := u.Bob(i)
				Expect(tr).To(HaveLen(1))
				Expect(tr[0].Position).To(Equal(b.Position))
				Expect(tr[0].Color).To(Equal(b.Color))
			}
		})

		It("bounds trails at the trail capacity", func() {
			for i := 0; i < sim.TrailCapacity+40; i++ {
				u.Advance(1)
			}
			for _, tr := range u.Trails() {
				Expect(tr).To(HaveLen(sim.TrailCapacity))
			}
		})

		It("truncates chains longer than the cap", func() {
			for u.BobCount() < 150 {
				u.AddBobSimple(0)
			}
			u.Advance(1)
			Expect(u.BobCount()).To(Equal(sim.MaxBobsEuler))
		})

		It("truncates an over-cap chain even when the tick is not applied", func() {
			Expect(u.SetMethod(integrators.MethodHamiltonian)).To(Succeed())
			u.SetMaxBobs(1)
			Expect(u.Advance(1)).To(Equal(sim.NotImplemented))
			Expect(u.BobCount()).To(Equal(1))
			Expect(u.Trails()[0]).To(BeEmpty())
		})

		It("enforces the cap on demand", func() {
			for u.BobCount() < 105 {
				u.AddBobSimple(0)
			}
			Expect(u.EnforceMaxBobs()).To(Equal(5))
			Expect(u.BobCount()).To(Equal(sim.MaxBobsEuler))
			Expect(u.State()).To(HaveLen(2 * sim.MaxBobsEuler))
			Expect(u.EnforceMaxBobs()).To(Equal(0))
		})

		It("aborts without mutation when the solve produces NaN", func() {
			for _, m := range []integrators.Method{integrators.MethodEuler, integrators.MethodRK4} {
				u.Reset()
				Expect(u.SetMethod(m)).To(Succeed())
				u.AddBob(physics.NewBob(dynamo.V2(300, 0), math.Inf(1), math.Pi/2,
					physics.NewLink(100, 10, 0), 10, 10, 0xffffff))
				before := u.Snapshot()

				out := u.Advance(16)
				Expect(out).To(Equal(sim.Aborted), "method %s", m)
				Expect(out.Err()).To(MatchError(dynamo.ErrUnstable))
				Expect(u.Snapshot()).To(Equal(before))
			}
		})

		It("aborts on a non-finite angle", func() {
			u.AddBob(physics.NewBob(dynamo.V2(0, 0), 0, math.NaN(), physics.NewLink(100, 10, 0), 10, 10, 0))
			thetas := u.State().Clone()[:2]
			Expect(u.Advance(16)).To(Equal(sim.Aborted))
			Expect(u.State()[:2]).To(Equal(thetas))
		})

		It("reports the hamiltonian method as not implemented", func() {
			Expect(u.SetMethod(integrators.MethodHamiltonian)).To(Succeed())
			before := u.Snapshot()
			out := u.Advance(16)
			Expect(out).To(Equal(sim.NotImplemented))
			Expect(out.Err()).To(MatchError(dynamo.ErrNotImplemented))
			Expect(u.Snapshot()).To(Equal(before))
		})

		It("notifies observers after applied ticks only", func() {
			obs := &recordingObserver{}
			u.AddObserver(obs)
			u.Advance(16)
			u.SetPaused(true)
			u.Advance(16)
			Expect(obs.times).To(Equal([]float64{u.Elapsed()}))
			Expect(obs.states[0]).To(Equal(u.State()))
		})
	})

	Describe("mutators", func() {
		It("chains AddBobSimple from the last bob's stored position", func() {
			last, _ := u.Bob(1)
			u.AddBobSimple(0.5)

			b, ok := u.Bob(2)
			Expect(ok).To(BeTrue())
			Expect(b.Position).To(Equal(last.Position.Add(dynamo.V2(100*math.Sin(0.5), 100*math.Cos(0.5)))))
			Expect(b.Theta).To(Equal(0.5))
			Expect(b.Omega).To(BeZero())
			Expect(b.Mass).To(Equal(sim.DefaultMass))
			Expect(b.Radius).To(Equal(sim.DefaultRadius))
			Expect(b.Link).To(Equal(physics.NewLink(100, 10, 0x0f0f0f)))
			Expect(b.Color).To(Equal(uint32(0x00ff00)))
		})

		It("places the first simple bob relative to the origin", func() {
			u.RemoveBob()
			u.RemoveBob()
			u.AddBobSimple(math.Pi / 2)
			b, _ := u.Bob(0)
			Expect(b.Position).To(Equal(dynamo.V2(100*math.Sin(math.Pi/2), 100*math.Cos(math.Pi/2))))
		})

		It("removes bobs from the tail and tolerates an empty chain", func() {
			u.AddBobSimple(0.1)
			u.RemoveBob()
			Expect(u.BobCount()).To(Equal(2))
			b, _ := u.Bob(1)
			Expect(b.Color).To(Equal(uint32(0x0000ff)))
			for i := 0; i < 5; i++ {
				u.RemoveBob()
			}
			Expect(u.BobCount()).To(BeZero())
		})

		It("re-solves positions from the mutated bob onward", func() {
			u.AddBobSimple(0.2)
			u.UpdateBobTheta(1, 0.7)
			expectKinematics(u)

			u.UpdateBobLength(0, 40)
			b, _ := u.Bob(0)
			Expect(b.Link.Length).To(Equal(40.0))
			expectKinematics(u)
		})

		It("updates mass without moving the bob", func() {
			before, _ := u.Bob(0)
			u.UpdateBobMass(0, 3)
			after, _ := u.Bob(0)
			Expect(after.Mass).To(Equal(3.0))
			Expect(after.Position).To(Equal(before.Position))
		})

		It("ignores out of range indices", func() {
			before := u.Snapshot()
			u.UpdateBobTheta(-1, 1)
			u.UpdateBobTheta(2, 1)
			u.UpdateBobLength(7, 1)
			u.UpdateBobMass(2, 1)
			Expect(u.Snapshot()).To(Equal(before))

			_, ok := u.Bob(2)
			Expect(ok).To(BeFalse())
			_, ok = u.Bob(-1)
			Expect(ok).To(BeFalse())
		})

		It("couples the chain cap to the method", func() {
			Expect(u.SetMethod(integrators.MethodRK4)).To(Succeed())
			Expect(u.MaxBobs()).To(Equal(sim.MaxBobsExtended))
			Expect(u.SetMethod(integrators.MethodEuler)).To(Succeed())
			Expect(u.MaxBobs()).To(Equal(sim.MaxBobsEuler))
		})

		It("rejects unknown methods", func() {
			Expect(u.SetMethod(integrators.Method(42))).To(MatchError(dynamo.ErrUnknownMethod))
			Expect(u.Method()).To(Equal(integrators.MethodEuler))
		})

		It("sets plain fields", func() {
			u.SetGravity(1.62)
			u.SetSpeed(0.1)
			u.SetPaused(true)
			Expect(u.Gravity()).To(Equal(1.62))
			Expect(u.Speed()).To(Equal(0.1))
			Expect(u.Paused()).To(BeTrue())
		})

		It("resets to defaults but keeps the color source", func() {
			u.SetGravity(1)
			u.AddBobSimple(0)
			u.Advance(16)
			u.Reset()

			Expect(u.BobCount()).To(Equal(2))
			Expect(u.Gravity()).To(Equal(sim.DefaultGravity))
			Expect(u.Ticks()).To(BeZero())
			Expect(u.Trails()[0]).To(BeEmpty())

			u.AddBobSimple(0)
			b, _ := u.Bob(2)
			Expect(b.Color).To(Equal(uint32(0x00ff00)))
		})
	})

	Describe("queries", func() {
		It("returns copies that do not alias the universe", func() {
			u.Advance(16)
			bobs := u.Bobs()
			bobs[0].Theta = 42
			bobs[0].Trail.Record(physics.TrailPoint{}, 10)

			b, _ := u.Bob(0)
			Expect(b.Theta).NotTo(Equal(42.0))
			Expect(b.Trail.Len()).To(Equal(1))
		})

		It("projects every bob field into the snapshot", func() {
			u.Advance(16)
			snap := u.Snapshot()
			Expect(snap.Bobs).To(HaveLen(2))
			for i, rec := range snap.Bobs {
				b, _ := u.Bob(i)
				Expect(rec.Position).To(Equal(b.Position))
				Expect(rec.Theta).To(Equal(b.Theta))
				Expect(rec.Omega).To(Equal(b.Omega))
				Expect(rec.Link).To(Equal(b.Link))
				Expect(rec.Radius).To(Equal(b.Radius))
				Expect(rec.Mass).To(Equal(b.Mass))
				Expect(rec.Color).To(Equal(b.Color))
				Expect(rec.Trail).To(Equal(b.Trail.Points()))
			}

			data, err := json.Marshal(snap)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"method":"euler"`))
			Expect(string(data)).To(ContainSubstring(`"trail":[{"pos":`))
		})
	})

	Describe("Run", func() {
		It("counts applied ticks", func() {
			res, err := u.Run(context.Background(), 10, 16)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(Equal(10))
			Expect(res.Last).To(Equal(sim.Applied))
		})

		It("stops at the first failing tick", func() {
			Expect(u.SetMethod(integrators.MethodHamiltonian)).To(Succeed())
			res, err := u.Run(context.Background(), 10, 16)
			Expect(err).To(MatchError(dynamo.ErrNotImplemented))

			var tickErr *dynamo.TickError
			Expect(err).To(BeAssignableToTypeOf(tickErr))
			Expect(res.Applied).To(BeZero())
			Expect(res.Last).To(Equal(sim.NotImplemented))
		})

		It("honors context cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := u.Run(ctx, 10, 16)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Applied).To(BeZero())
		})
	})

	Describe("Ensemble", func() {
		It("runs every universe independently", func() {
			euler := sim.New()
			rk4 := sim.New()
			Expect(rk4.SetMethod(integrators.MethodRK4)).To(Succeed())
			ham := sim.New()
			Expect(ham.SetMethod(integrators.MethodHamiltonian)).To(Succeed())

			results := sim.NewEnsemble(euler, rk4, ham).Run(context.Background(), 20, 16)
			Expect(results).To(HaveLen(3))
			Expect(results[0].Err).NotTo(HaveOccurred())
			Expect(results[0].Applied).To(Equal(20))
			Expect(results[1].Err).NotTo(HaveOccurred())
			Expect(results[2].Err).To(MatchError(dynamo.ErrNotImplemented))

			Expect(euler.Ticks()).To(Equal(20))
			Expect(rk4.Ticks()).To(Equal(20))
		})
	})
})

type recordingObserver struct {
	states []dynamo.State
	times  []float64
}

func (r *recordingObserver) OnStep(x dynamo.State, t float64) {
	r.states = append(r.states, x.Clone())
	r.times = append(r.times, t)
}
