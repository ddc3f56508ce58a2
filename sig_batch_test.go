package sig_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnatoleLucet/sig"
)

func TestBatch(t *testing.T) {
	t.Run("batches multiple writes", func(t *testing.T) {
		log := []string{}

		d := sig.NewDomain()
		count := sig.NewSignal(d, 0)

		sig.NewEffect(d, func() func() {
			log = append(log, fmt.Sprintf("changed %d", count.Read()))
			return func() {
				log = append(log, "cleanup")
			}
		})

		d.NewBatch(func() {
			count.Write(10)
			count.Write(20)
			log = append(log, "updated")
		})

		assert.Equal(t, []string{
			"changed 0",
			"updated",
			"cleanup",
			"changed 20",
		}, log)
	})

	t.Run("batches multiple signals", func(t *testing.T) {
		log := []string{}

		d := sig.NewDomain()
		count := sig.NewSignal(d, 0)
		double := sig.NewSignal(d, 0)

		sig.NewEffect(d, func() func() {
			log = append(log, fmt.Sprintf("count %d", count.Read()))
			return func() {
				log = append(log, "count cleanup")
			}
		})

		sig.NewEffect(d, func() func() {
			log = append(log, fmt.Sprintf("double %d", double.Read()))
			return func() {
				log = append(log, "double cleanup")
			}
		})

		d.NewBatch(func() {
			count.Write(10)
			double.Write(20)
			log = append(log, "updated")
		})

		assert.Equal(t, []string{
			"count 0",
			"double 0",
			"updated",
			"count cleanup",
			"count 10",
			"double cleanup",
			"double 20",
		}, log)
	})

	t.Run("nested batches", func(t *testing.T) {
		log := []string{}

		d := sig.NewDomain()
		count := sig.NewSignal(d, 0)

		sig.NewEffect(d, func() func() {
			log = append(log, fmt.Sprintf("changed %d", count.Read()))
			return func() {
				log = append(log, "cleanup")
			}
		})

		d.NewBatch(func() {
			count.Write(10)
			d.NewBatch(func() {
				count.Write(20)
			})
			log = append(log, "updated")
		})

		assert.Equal(t, []string{
			"changed 0",
			"updated",
			"cleanup",
			"changed 20",
		}, log)
	})
}
