package nlp_test

import (
	"github.com/mcp-scout/mcp-scout/internal/nlp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RegexExtractor", func() {
	var extractor *nlp.RegexExtractor

	BeforeEach(func() {
		extractor = nlp.NewRegexExtractor()
	})

	It("should tag URLs", func() {
		entities := extractor.ExtractEntities("see https://example.com/page for details")
		Expect(entities).To(HaveKeyWithValue("https://example.com/page", "url"))
	})

	It("should tag file references", func() {
		entities := extractor.ExtractEntities("the bug is in cmd/server/main.go somewhere")
		Expect(entities).To(HaveKeyWithValue("cmd/server/main.go", "file"))
	})

	It("should tag shell commands", func() {
		entities := extractor.ExtractEntities("then run docker compose and wait")
		Expect(entities).To(HaveKeyWithValue("docker compose", "command"))
	})

	It("should tag database names case-insensitively", func() {
		entities := extractor.ExtractEntities("we migrated from MySQL to Postgres")
		Expect(entities).To(HaveKeyWithValue("MySQL", "database"))
		Expect(entities).To(HaveKeyWithValue("Postgres", "database"))
	})

	It("should return an empty map for plain prose", func() {
		entities := extractor.ExtractEntities("nothing technical here")
		Expect(entities).To(BeEmpty())
	})
})

var _ = Describe("NoopExtractor", func() {
	It("should always return an empty map", func() {
		Expect(nlp.NoopExtractor{}.ExtractEntities("postgres at https://x.dev")).To(BeEmpty())
	})
})
