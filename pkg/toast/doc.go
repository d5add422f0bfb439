// Package toast displays transient notifications in a page document.
//
// A Notifier finds (or creates) the page's ".toast-container", appends a
// toast element to it, and schedules the element's removal after a fixed
// lifetime of 3 seconds:
//
//	n := toast.New(doc, sched)
//	n.Success("Project deleted")
//	n.Error("Failed to delete project")
//
// The element produced for n.Success("Saved") is:
//
//	<div class="toast alert-success fade-slide">
//	    <i class="fas fa-check-circle"></i> Saved
//	</div>
//
// Styling is external: the page's stylesheet defines "toast",
// "alert-<type>" and "fade-slide", and an icon font provides
// "fa-check-circle" and "fa-exclamation-triangle".
//
// # Message Content
//
// Messages are inserted as HTML, exactly like assigning innerHTML in a
// browser. Escape untrusted text before passing it in.
//
// # Lifetime
//
// Removal is fire-and-forget. A toast cannot be dismissed early through
// this package and its timer cannot be extended. If something else
// removed the element first, the scheduled removal does nothing.
package toast
