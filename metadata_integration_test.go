package fmp_test

import (
	"github.com/bsm/fmp"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Metadata discovery", func() {
	fx := fixture{
		tableName: "Contacts",
		columns:   []string{"First", "Last", "Email"},
		rows: [][]string{
			{"Ada", "Lovelace", "ada@example.com"},
		},
	}

	It("should discover the table and its columns", func() {
		f, err := fmp.OpenBuffer(fx.build())
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		tables, err := f.ListTables()
		Expect(err).NotTo(HaveOccurred())
		Expect(tables).To(HaveLen(1))
		Expect(tables[0].Name).To(Equal("Contacts"))

		cols, err := f.ListColumns(tables[0].Index)
		Expect(err).NotTo(HaveOccurred())
		Expect(cols).To(HaveLen(3))

		var names []string
		for _, c := range cols {
			names = append(names, c.Name)
		}
		Expect(names).To(Equal([]string{"First", "Last", "Email"}))
	})
})
