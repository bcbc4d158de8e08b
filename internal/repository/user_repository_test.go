package repository

import (
    "context"
    "sort"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/pkg/database"
)

func usernames(us []*model.User) []string {
    out := make([]string, len(us))
    for i, u := range us {
        out[i] = u.Username
    }
    sort.Strings(out)
    return out
}

func TestFindByUsernames(t *testing.T) {
    db := database.OpenTest(t)
    repo := NewUserRepository(db)
    ctx := context.Background()
    for _, name := range []string{"Jan", "jan", "Bert"} {
        require.NoError(t, repo.Create(ctx, &model.User{Username: name}))
    }

    tests := []struct {
        name  string
        query []string
        want  []string
    }{
        {"exact match wins over case variant", []string{"Jan"}, []string{"Jan"}},
        {"both spellings", []string{"Jan", "jan"}, []string{"Jan", "jan"}},
        {"single case-insensitive candidate", []string{"bert"}, []string{"Bert"}},
        {"ambiguous case-insensitive match", []string{"JAN"}, []string{}},
        {"unknown", []string{"nobody"}, []string{}},
        {"no duplicates", []string{"Bert", "BERT"}, []string{"Bert"}},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got, err := repo.FindByUsernames(ctx, tt.query)
            require.NoError(t, err)
            assert.Equal(t, tt.want, usernames(got))
        })
    }
}
