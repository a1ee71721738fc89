package storage

type transferMode int

const (
	transferSimple transferMode = iota
	transferMultipart
)

// transferPlan is advisory output: it only selects which client call to make
// and with how many workers. It is never persisted.
type transferPlan struct {
	mode    transferMode
	threads int
}

// plan selects the transfer strategy for one operation. The caller passes the
// threshold matching the operation kind (upload vs copy). A negative size
// means the payload length is unknown; those conservatively stay in simple
// mode. threads stays 0 (client default) unless the caller set a positive
// "thread_count" option.
func plan(size, threshold int64, opts Options) transferPlan {
	p := transferPlan{mode: transferSimple}
	if size > threshold {
		p.mode = transferMultipart
		if n, ok := opts.intVal("thread_count"); ok && n > 0 {
			p.threads = n
		}
	}
	return p
}
