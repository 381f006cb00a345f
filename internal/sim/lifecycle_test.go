package sim

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/config"
)

var _ = Describe("Driver lifecycle", func() {
	var (
		clock *ManualClock
		s     *Simulation
	)

	steps := func() uint64 { return s.Registry.Frame().Steps }

	BeforeEach(func() {
		clock = NewManualClock(time.Unix(0, 0))

		var err error
		s, err = FromConfig(config.GetPreset("kepler"), clock, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		s.Stop()
	})

	It("advances only when the clock does", func() {
		Expect(s.Start(context.Background())).To(Succeed())
		Expect(s.Driver.Running()).To(BeTrue())

		Consistently(steps, 50*time.Millisecond, 5*time.Millisecond).Should(BeZero())

		clock.Advance(30 * time.Millisecond)
		Eventually(steps).Should(BeNumerically(">=", 2))
	})

	It("caps a long stall at one max frame", func() {
		Expect(s.Start(context.Background())).To(Succeed())

		clock.Advance(time.Hour)
		Eventually(steps).Should(BeNumerically(">=", 4))
		Consistently(steps, 30*time.Millisecond, 5*time.Millisecond).Should(BeNumerically("<=", 5))
	})

	It("refuses a second start", func() {
		Expect(s.Start(context.Background())).To(Succeed())
		Expect(s.Start(context.Background())).To(MatchError(ErrDriverRunning))
	})

	It("stops idempotently and can restart", func() {
		s.Stop()

		Expect(s.Start(context.Background())).To(Succeed())
		s.Stop()
		s.Stop()
		Expect(s.Driver.Running()).To(BeFalse())

		Expect(s.Start(context.Background())).To(Succeed())
		Expect(s.Driver.Running()).To(BeTrue())
	})

	It("freezes while paused and resumes with the saved scale", func() {
		Expect(s.Start(context.Background())).To(Succeed())

		s.TimeScale.Pause()
		clock.Advance(40 * time.Millisecond)
		Consistently(steps, 30*time.Millisecond, 5*time.Millisecond).Should(BeZero())

		s.TimeScale.Resume()
		Expect(s.TimeScale.Load()).To(Equal(1.0))
		clock.Advance(40 * time.Millisecond)
		Eventually(steps).Should(BeNumerically(">=", 3))
	})

	It("exits when the parent context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		Expect(s.Start(ctx)).To(Succeed())

		cancel()

		done := make(chan struct{})
		go func() {
			s.Stop()
			close(done)
		}()
		Eventually(done).Should(BeClosed())
	})

	It("is no longer running once the parent context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		Expect(s.Start(ctx)).To(Succeed())

		cancel()
		Eventually(s.Driver.Running).Should(BeFalse())

		_, err := s.RunHeadless(context.Background(), RunOptions{Duration: 0.05, Frame: 10 * time.Millisecond}, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Start(context.Background())).To(Succeed())
		Expect(s.Driver.Running()).To(BeTrue())
	})

	It("credits time that passes right after Start", func() {
		Expect(s.Start(context.Background())).To(Succeed())
		clock.Advance(40 * time.Millisecond)

		Eventually(steps).Should(BeNumerically(">=", 3))
	})

	It("refuses a headless run while started", func() {
		Expect(s.Start(context.Background())).To(Succeed())

		_, err := s.RunHeadless(context.Background(), RunOptions{Duration: 1, Frame: time.Millisecond}, nil)
		Expect(err).To(MatchError(ErrDriverRunning))
	})
})
